// Package waitfor blocks process startup until a dependency answers.
package waitfor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Policy bounds the wait for a dependency.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsedTime of zero gives up after the first failed attempt.
	MaxElapsedTime time.Duration
}

// DefaultPolicy waits up to timeout with exponential backoff.
func DefaultPolicy(timeout time.Duration) Policy {
	return Policy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  timeout,
	}
}

// Ready calls check until it succeeds, ctx is done or the policy runs out.
// Only startup uses this; request paths never retry.
func Ready(ctx context.Context, name string, policy Policy, logger zerolog.Logger, check func(context.Context) error) error {
	if policy.MaxElapsedTime <= 0 {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", name, err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.MaxElapsedTime = policy.MaxElapsedTime

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return check(ctx)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Str("dependency", name).
			Int("attempt", attempt).
			Dur("retry_in", next).
			Msg("dependency not ready, retrying")
	})
	if err != nil {
		return fmt.Errorf("%s not ready after %d attempts: %w", name, attempt, err)
	}

	return nil
}
