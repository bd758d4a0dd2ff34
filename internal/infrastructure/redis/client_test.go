package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, "redis://"+s.Addr(), WithPoolSize(7), WithTimeouts(2*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 7, client.Options().PoolSize)
	assert.Equal(t, 2*time.Second, client.Options().ReadTimeout)
	assert.Equal(t, 2*time.Second, client.Options().WriteTimeout)
	assert.NoError(t, Ping(ctx, client))
}

func TestNewClientErrors(t *testing.T) {
	down := miniredis.RunT(t)
	downURL := "redis://" + down.Addr()
	down.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"invalid url", "://bad-url"},
		{"server down", downURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tt.url)
			assert.Error(t, err)
		})
	}
}

func TestOptionsIgnoreNonPositive(t *testing.T) {
	o := &redis.Options{PoolSize: 3, ReadTimeout: time.Second}
	WithPoolSize(0)(o)
	WithTimeouts(-1)(o)

	assert.Equal(t, 3, o.PoolSize)
	assert.Equal(t, time.Second, o.ReadTimeout)
}
