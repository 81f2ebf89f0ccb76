// Package cache selects the response cache backend.
package cache

import (
	"context"
	"fmt"

	"github.com/schoolhub/aigateway/internal/cache/memory"
	"github.com/schoolhub/aigateway/internal/cache/redis"
	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures the response cache.
type Config struct {
	Backend   string `env:"CACHE_BACKEND"    envDefault:"memory"`
	RedisURL  string `env:"REDIS_URL"        envDefault:"redis://localhost:6379/0"`
	KeyPrefix string `env:"CACHE_KEY_PREFIX" envDefault:"aigateway:response:"`
}

// Backend is a response cache that owns resources released by Close.
type Backend struct {
	domain.ResponseCache
	close func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// New builds the configured backend (DI constructor).
func New(ctx context.Context, cfg *Config) (*Backend, error) {
	logger := observability.FromContext(ctx)

	switch cfg.Backend {
	case BackendMemory, "":
		c := memory.New()
		logger.Info("response cache ready", observability.String("backend", BackendMemory))
		return &Backend{ResponseCache: c, close: c.Close}, nil
	case BackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect response cache: %w", err)
		}
		logger.Info("response cache ready",
			observability.String("backend", BackendRedis),
			observability.String("key_prefix", cfg.KeyPrefix))
		return &Backend{ResponseCache: redis.NewCache(client, cfg.KeyPrefix), close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
