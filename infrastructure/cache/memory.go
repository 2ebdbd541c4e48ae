// Package cache provides ports.Cache implementations for serialized read
// models.
package cache

import (
	"context"
	"sync"
	"time"

	"numtree-backend/application/ports"
)

// InMemoryCache is a process-local cache with per-key expiry
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	now   func() time.Time

	stop chan struct{}
	once sync.Once
	done sync.WaitGroup
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

var _ ports.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache creates a cache that sweeps expired keys every interval.
// Call Close to stop the sweeper.
func NewInMemoryCache(interval time.Duration) *InMemoryCache {
	if interval <= 0 {
		interval = time.Minute
	}
	c := &InMemoryCache{
		items: make(map[string]cacheItem),
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	c.done.Add(1)
	go c.cleanupExpired(interval)

	return c
}

// Get returns ports.ErrCacheMiss for absent or expired keys
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.expired(item) {
		return nil, ports.ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := cacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

// Delete removes the keys; missing keys are ignored
func (c *InMemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]cacheItem)
	c.mu.Unlock()
}

// Len returns the number of stored keys, expired or not
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper and waits for it to exit
func (c *InMemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	c.done.Wait()
	return nil
}

func (c *InMemoryCache) expired(item cacheItem) bool {
	return !item.expiresAt.IsZero() && c.now().After(item.expiresAt)
}

func (c *InMemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, item := range c.items {
		if c.expired(item) {
			delete(c.items, key)
		}
	}
}

// cleanupExpired periodically removes expired items
func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	defer c.done.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}
