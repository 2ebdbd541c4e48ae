package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter implements sliding window rate limiting in memory
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	lastPrune  time.Time
	now        func() time.Time
}

type window struct {
	requests []time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)
	l.pruneLocked(now, windowStart)

	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}

	// Drop requests outside the window; they are stored oldest first
	keep := 0
	for keep < len(w.requests) && !w.requests[keep].After(windowStart) {
		keep++
	}
	w.requests = w.requests[keep:]

	if len(w.requests) >= l.limit {
		return false, nil
	}

	w.requests = append(w.requests, now)
	return true, nil
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

// pruneLocked forgets keys with no request inside the window, at most once
// per window.
func (l *SlidingWindowLimiter) pruneLocked(now, windowStart time.Time) {
	if now.Sub(l.lastPrune) < l.windowSize {
		return
	}
	l.lastPrune = now
	for key, w := range l.windows {
		if len(w.requests) == 0 || !w.requests[len(w.requests)-1].After(windowStart) {
			delete(l.windows, key)
		}
	}
}

// IPRateLimiter keys an underlying limiter by client IP
type IPRateLimiter struct {
	limiter RateLimiter
	limit   int
}

// NewIPRateLimiter creates an in-memory IP-based rate limiter
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return NewIPRateLimiterWith(NewSlidingWindowLimiter(requestsPerMinute, time.Minute), requestsPerMinute)
}

// NewIPRateLimiterWith wraps an existing limiter that allows limit requests per minute
func NewIPRateLimiterWith(limiter RateLimiter, limit int) *IPRateLimiter {
	return &IPRateLimiter{limiter: limiter, limit: limit}
}

// Allow checks if a request from an IP is allowed
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, "ip:"+ip)
}

// Reset clears the window of an IP
func (l *IPRateLimiter) Reset(ctx context.Context, ip string) error {
	return l.limiter.Reset(ctx, "ip:"+ip)
}

// Limit returns the number of requests allowed per minute
func (l *IPRateLimiter) Limit() int {
	return l.limit
}
