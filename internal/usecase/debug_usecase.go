package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// ConnectionReport is the result of a backend connectivity check.
type ConnectionReport struct {
	OK      bool
	Latency time.Duration
	Error   string
}

// SessionReport describes who the service believes is calling.
type SessionReport struct {
	Scope   domain.UserScope
	Session *domain.Session
}

// DebugUseCase exposes connectivity and session diagnostics.
type DebugUseCase struct {
	health HealthChecker
	scope  *ScopeResolver
	logger zerolog.Logger
}

// NewDebugUseCase creates a new DebugUseCase.
func NewDebugUseCase(health HealthChecker, scope *ScopeResolver, logger zerolog.Logger) *DebugUseCase {
	return &DebugUseCase{
		health: health,
		scope:  scope,
		logger: logger,
	}
}

// CheckConnection pings the storage backend.
func (uc *DebugUseCase) CheckConnection(ctx context.Context) ConnectionReport {
	start := time.Now()
	err := uc.health.Ping(ctx)
	report := ConnectionReport{OK: err == nil, Latency: time.Since(start)}
	if err != nil {
		uc.logger.Error().Err(err).Msg("connection check failed")
		report.Error = err.Error()
	}
	return report
}

// Session reports the resolved scope and session details.
func (uc *DebugUseCase) Session(ctx context.Context) SessionReport {
	scope, session := uc.scope.Session(ctx)
	return SessionReport{Scope: scope, Session: session}
}
