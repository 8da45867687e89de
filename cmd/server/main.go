package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/martin5169/financial-dashboard/internal/adapter/http"
	"github.com/martin5169/financial-dashboard/internal/adapter/http/handler"
	"github.com/martin5169/financial-dashboard/internal/adapter/http/middleware"
	postgresRepo "github.com/martin5169/financial-dashboard/internal/adapter/repository/postgres"
	redisRepo "github.com/martin5169/financial-dashboard/internal/adapter/repository/redis"
	"github.com/martin5169/financial-dashboard/internal/adapter/repository/rest"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/config"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/dataclient"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/logger"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/metrics"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/postgres"
	redisClient "github.com/martin5169/financial-dashboard/internal/infrastructure/redis"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/waitfor"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

// backend bundles the repositories and identity provider of one storage backend.
type backend struct {
	name         string
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	payments     usecase.PaymentRepository
	identity     usecase.IdentityProvider
	health       usecase.HealthChecker
	close        func()
}

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)
	loc := cfg.Location()

	be, err := openBackend(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer be.close()
	log.Info().Str("backend", be.name).Str("timezone", loc.String()).Msg("storage backend ready")

	// Redis is optional; without it requests are not deduplicated.
	var (
		rdb              *redis.Client
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		rdb, err = redisClient.NewClientWithRetry(ctx, cfg.RedisURL, cfg.DatabaseConnectTimeout, log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		idempotencyStore = redisRepo.NewIdempotencyStore(rdb)
		log.Info().Msg("connected to redis")
	}

	// Use cases
	scope := usecase.NewScopeResolver(be.identity, cfg.GuestUserID, log).WithRecorder(m)
	clock := time.Now
	accountUC := usecase.NewAccountUseCase(be.accounts, scope, m, log)
	transactionUC := usecase.NewTransactionUseCase(be.transactions, scope, m, clock, log)
	paymentUC := usecase.NewPaymentUseCase(be.payments, scope, m, clock, log)
	debugUC := usecase.NewDebugUseCase(be.health, scope, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimited(func(path string) {
		m.RateLimitHits.WithLabelValues(path).Inc()
	})
	go sweepLimiters(ctx, limiter, log)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, loc),
		PaymentHandler:     handler.NewPaymentHandler(paymentUC, loc),
		DebugHandler:       handler.NewDebugHandler(debugUC),
		HealthHandler:      handler.NewHealthHandler(be.health, be.name, rdb),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        limiter,
		Metrics:            m,
		MetricsHandler:     promhttp.Handler(),
		Logger:             log,
	})

	server := newServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func openBackend(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*backend, error) {
	switch cfg.DataBackend {
	case config.BackendREST:
		return openREST(ctx, cfg, m, log)
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

func openREST(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*backend, error) {
	client, err := dataclient.New(dataclient.Config{
		URL:      cfg.DataServiceURL,
		APIKey:   cfg.DataServiceKey,
		AppName:  cfg.DataAppName,
		Timeout:  cfg.DataTimeout,
		Observer: m,
	})
	if err != nil {
		return nil, err
	}

	if err := waitfor.Ready(ctx, "data service", waitfor.DefaultPolicy(cfg.DatabaseConnectTimeout), log, client.Ping); err != nil {
		return nil, err
	}

	loc := cfg.Location()
	return &backend{
		name:         config.BackendREST,
		accounts:     rest.NewAccountRepository(client, loc, log),
		transactions: rest.NewTransactionRepository(client, loc, log),
		payments:     rest.NewPaymentRepository(client, loc, log),
		identity:     rest.NewIdentity(client),
		health:       client,
		close:        func() {},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	idGen := postgresRepo.NewULIDGenerator()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)

	return &backend{
		name:         config.BackendPostgres,
		accounts:     postgresRepo.NewAccountRepository(pool, idGen, log),
		transactions: postgresRepo.NewTransactionRepository(pool, idGen, log),
		payments:     postgresRepo.NewPaymentRepository(pool, idGen, cfg.Location(), log),
		identity:     auth.NewLocalIdentity(jwtManager),
		health:       pool,
		close:        pool.Close,
	}, nil
}

// sweepLimiters drops idle per-client limiters until ctx is done.
func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := limiter.CleanupLimiters(limiterMaxIdle); removed > 0 {
				log.Debug().Int("removed", removed).Msg("cleaned up idle rate limiters")
			}
		}
	}
}
