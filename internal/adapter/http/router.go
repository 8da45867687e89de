package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/adapter/http/handler"
	"github.com/martin5169/financial-dashboard/internal/adapter/http/middleware"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/metrics"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	PaymentHandler     *handler.PaymentHandler
	DebugHandler       *handler.DebugHandler
	HealthHandler      *handler.HealthHandler

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BearerToken)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger, cfg.Metrics)
			r.Use(idempotency.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", cfg.AccountHandler.List)
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/totals", cfg.AccountHandler.Totals)
			r.Get("/balances", cfg.AccountHandler.Balances)
			r.Patch("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Post("/", cfg.TransactionHandler.Create)
			r.Patch("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", cfg.PaymentHandler.List)
			r.Post("/", cfg.PaymentHandler.Create)
			r.Patch("/{id}", cfg.PaymentHandler.Update)
			r.Delete("/{id}", cfg.PaymentHandler.Delete)
			r.Post("/{id}/pay", cfg.PaymentHandler.Pay)
			r.Post("/{id}/cancel", cfg.PaymentHandler.Cancel)
		})

		// Session and diagnostics
		r.Get("/session", cfg.DebugHandler.Session)
		r.Get("/debug/connection", cfg.DebugHandler.Connection)
	})

	return r
}
