package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DistributedRateLimiter implements fixed window rate limiting in Redis
// This allows rate limiting to work correctly across Lambda invocations
// and multiple API instances.
type DistributedRateLimiter struct {
	client    backend.UniversalClient
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
}

// NewDistributedRateLimiter creates a limiter allowing limit requests per window
func NewDistributedRateLimiter(client backend.UniversalClient, keyPrefix string, limit int, window time.Duration) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// NewDistributedIPRateLimiter creates a per-minute IP limiter backed by Redis
func NewDistributedIPRateLimiter(client backend.UniversalClient, requestsPerMinute int) *IPRateLimiter {
	return NewIPRateLimiterWith(
		NewDistributedRateLimiter(client, "numtree:ratelimit:", requestsPerMinute, time.Minute),
		requestsPerMinute,
	)
}

func (l *DistributedRateLimiter) bucketKey(key string) string {
	bucket := l.now().UnixNano() / int64(l.window)
	return l.keyPrefix + key + ":" + strconv.FormatInt(bucket, 10)
}

// Allow counts the request in the current window
func (l *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.bucketKey(key)

	var incr *backend.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, 2*l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}

// Reset clears the current window for a key
func (l *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.bucketKey(key)).Err(); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}
