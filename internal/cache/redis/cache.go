// Package redis provides a Redis-backed response cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/schoolhub/aigateway/internal/domain"
)

const (
	defaultQueryTimeout = 500 * time.Millisecond
	pingTimeout         = 5 * time.Second
)

// Cache stores responses as plain string values under a key prefix.
type Cache struct {
	client       *redis.Client
	prefix       string
	queryTimeout time.Duration
}

// NewCache wraps an existing Redis client. The caller owns the client lifecycle.
func NewCache(client *redis.Client, prefix string) *Cache {
	return &Cache{
		client:       client,
		prefix:       prefix,
		queryTimeout: defaultQueryTimeout,
	}
}

// NewClient parses redisURL, connects and verifies the connection with a PING.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// Get returns the cached value, domain.ErrCacheMiss on a miss, or the Redis error.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}

	return value, nil
}

// Set stores value under key with ttl.
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
