package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
)

// Storage backends.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Storage backend: rest (hosted data service API) or postgres (direct)
	DataBackend string `env:"DATA_BACKEND" envDefault:"rest"`

	// Hosted data service
	DataServiceURL string        `env:"DATA_SERVICE_URL"`
	DataServiceKey string        `env:"DATA_SERVICE_KEY"`
	DataAppName    string        `env:"DATA_APP_NAME"    envDefault:"financial-dashboard"`
	DataTimeout    time.Duration `env:"DATA_TIMEOUT"     envDefault:"15s"`

	// Database
	DatabaseURL            string        `env:"DATABASE_URL"`
	DatabaseMaxConns       int           `env:"DATABASE_MAX_CONNS"       envDefault:"10"`
	DatabaseMinConns       int           `env:"DATABASE_MIN_CONNS"       envDefault:"1"`
	DatabaseConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"30s"`

	// Redis (optional - leave empty to disable idempotency)
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Authentication: project JWT secret, used by the postgres backend to
	// verify access tokens locally
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	// Records created without a session belong to this user
	GuestUserID string `env:"GUEST_USER_ID" envDefault:"de8b95c7-3193-4f80-86d3-9212a60fe79b"`

	// Date-only values are interpreted in this zone
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings required by the selected backend are present.
func (c *Config) Validate() error {
	var errs []error

	switch c.DataBackend {
	case BackendREST:
		if c.DataServiceURL == "" {
			errs = append(errs, errors.New("DATA_SERVICE_URL is required for the rest backend"))
		}
		if c.DataServiceKey == "" {
			errs = append(errs, errors.New("DATA_SERVICE_KEY is required for the rest backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend))
	}

	if _, err := uuid.Parse(c.GuestUserID); err != nil {
		errs = append(errs, fmt.Errorf("GUEST_USER_ID: %w", err))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	if c.DatabaseMinConns > c.DatabaseMaxConns {
		errs = append(errs, errors.New("DATABASE_MIN_CONNS exceeds DATABASE_MAX_CONNS"))
	}

	return errors.Join(errs...)
}

// Location returns the configured time zone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
