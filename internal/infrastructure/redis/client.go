package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/infrastructure/waitfor"
)

// NewClient creates a new Redis client and checks it answers.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithRetry(ctx, redisURL, 0, zerolog.Nop())
}

// NewClientWithRetry creates a new Redis client, waiting up to connectTimeout
// for the server to answer a ping.
func NewClientWithRetry(ctx context.Context, redisURL string, connectTimeout time.Duration, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Verify connection
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := waitfor.Ready(ctx, "redis", waitfor.DefaultPolicy(connectTimeout), logger, ping); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
