package cache

import (
	"context"
	"errors"
	"time"

	"numtree-backend/application/ports"

	"go.uber.org/zap"
)

// LookupRecorder observes cache hits and misses
type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// InstrumentedCache records lookups and logs backend failures
type InstrumentedCache struct {
	next     ports.Cache
	recorder LookupRecorder
	logger   *zap.Logger
}

var _ ports.Cache = (*InstrumentedCache)(nil)

// NewInstrumentedCache wraps next. A nil recorder only logs.
func NewInstrumentedCache(next ports.Cache, recorder LookupRecorder, logger *zap.Logger) *InstrumentedCache {
	return &InstrumentedCache{next: next, recorder: recorder, logger: logger}
}

// Get forwards to the wrapped cache and records the outcome
func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.next.Get(ctx, key)
	switch {
	case err == nil:
		c.record(true)
	case errors.Is(err, ports.ErrCacheMiss):
		c.record(false)
	default:
		c.record(false)
		c.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
	}
	return val, err
}

// Set forwards to the wrapped cache
func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	if err != nil {
		c.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Delete forwards to the wrapped cache
func (c *InstrumentedCache) Delete(ctx context.Context, keys ...string) error {
	err := c.next.Delete(ctx, keys...)
	if err != nil {
		c.logger.Warn("Cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return err
}

func (c *InstrumentedCache) record(hit bool) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(hit)
	}
}
