package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 3 * time.Second

// Option tweaks the options parsed from the URL before the client is built.
type Option func(*redis.Options)

// WithPoolSize caps the connections shared by the cache and idempotency store.
// Non-positive sizes keep the driver default.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// WithTimeouts sets both read and write timeouts.
func WithTimeouts(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.ReadTimeout = d
			o.WriteTimeout = d
		}
	}
}

// NewClient parses redisURL, connects, and verifies the server answers PING.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	for _, opt := range opts {
		opt(parsed)
	}

	client := redis.NewClient(parsed)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Ping checks the connection within a short timeout. Readiness probes use it.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
