// Package memory provides an in-process response cache with per-entry TTL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/schoolhub/aigateway/internal/domain"
)

const (
	cleanupInterval = 5 * time.Minute
	defaultTTL      = time.Hour
)

type item struct {
	value     string
	expiresAt time.Time
}

// Cache is safe for concurrent use. A background goroutine periodically
// removes expired entries until Close is called.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a Cache and starts the background cleanup loop.
func New() *Cache {
	c := &Cache{
		items: make(map[string]item),
		done:  make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanup()

	return c
}

// Get returns the cached value or domain.ErrCacheMiss.
// Expired entries are removed lazily on access.
func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return "", domain.ErrCacheMiss
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.items[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return "", domain.ErrCacheMiss
	}

	return entry.value, nil
}

// Set stores value under key for ttl. A zero or negative ttl means one hour.
func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	c.mu.Lock()
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
	return nil
}

func (c *Cache) cleanup() {
	defer c.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) evictExpired() {
	now := time.Now()

	c.mu.Lock()
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}
