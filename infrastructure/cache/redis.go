package cache

import (
	"context"
	"errors"
	"time"

	"numtree-backend/application/ports"

	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "numtree:cache:"

// RedisCache implements ports.Cache on Redis strings
type RedisCache struct {
	client backend.UniversalClient
	prefix string
}

var _ ports.Cache = (*RedisCache)(nil)

// Option configures a RedisCache
type Option func(*RedisCache)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// NewRedisClient connects to a single Redis node
func NewRedisClient(addr, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisCache creates a cache on an existing client
func NewRedisCache(client backend.UniversalClient, opts ...Option) *RedisCache {
	c := &RedisCache{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get returns ports.ErrCacheMiss when the key does not exist
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores value; a non-positive ttl never expires
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes the keys in one round trip
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// Ping implements ports.HealthChecker
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
