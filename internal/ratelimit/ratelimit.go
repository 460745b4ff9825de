// Package ratelimit implements per-caller request rate limiting with
// lazy-refill token buckets. Unauthenticated callers share per-IP buckets,
// authenticated callers get per-user buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed           bool
	Limit             int64
	Remaining         int64
	RetryAfterSeconds float64
}

// bucket is a token bucket refilled lazily on access, no background goroutine.
type bucket struct {
	tokens   float64
	max      float64
	rate     float64 // tokens per second
	lastFill time.Time
}

func newBucket(perMinute int64) *bucket {
	return &bucket{
		tokens:   float64(perMinute),
		max:      float64(perMinute),
		rate:     float64(perMinute) / 60.0,
		lastFill: time.Now(),
	}
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(b.max, b.tokens+elapsed*b.rate)
	b.lastFill = now
}

func (b *bucket) retryAfter() float64 {
	if b.tokens >= 1 {
		return 0
	}
	return (1 - b.tokens) / b.rate
}

// Limiter is a per-caller request bucket.
type Limiter struct {
	mu       sync.Mutex
	bucket   *bucket // nil when unlimited
	limit    int64
	lastUsed time.Time
}

func newLimiter(perMinute int64) *Limiter {
	l := &Limiter{limit: perMinute, lastUsed: time.Now()}
	if perMinute > 0 {
		l.bucket = newBucket(perMinute)
	}
	return l
}

// Allow consumes one request token.
func (l *Limiter) Allow() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.lastUsed = now

	if l.bucket == nil {
		return Result{Allowed: true}
	}
	l.bucket.refill(now)
	if l.bucket.tokens >= 1 {
		l.bucket.tokens--
		return Result{Allowed: true, Limit: l.limit, Remaining: int64(l.bucket.tokens)}
	}
	return Result{
		Allowed:           false,
		Limit:             l.limit,
		RetryAfterSeconds: l.bucket.retryAfter(),
	}
}

// Registry manages per-key limiters. Keys are user IDs or client IPs.
type Registry struct {
	mu        sync.RWMutex
	limiters  map[string]*Limiter
	perMinute int64
}

// NewRegistry creates a registry where every key gets the same per-minute
// limit. Zero means unlimited.
func NewRegistry(perMinute int64) *Registry {
	return &Registry{
		limiters:  make(map[string]*Limiter),
		perMinute: perMinute,
	}
}

// Allow consumes a token from the limiter for key, creating it on first use.
func (r *Registry) Allow(key string) Result {
	r.mu.RLock()
	l, ok := r.limiters[key]
	r.mu.RUnlock()
	if !ok {
		r.mu.Lock()
		if l, ok = r.limiters[key]; !ok {
			l = newLimiter(r.perMinute)
			r.limiters[key] = l
		}
		r.mu.Unlock()
	}
	return l.Allow()
}

// EvictStale removes limiters idle since cutoff, returning the count removed.
// A full bucket carries no state worth keeping, so eviction is lossless for
// anyone idle longer than the refill period.
func (r *Registry) EvictStale(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for k, l := range r.limiters {
		l.mu.Lock()
		stale := l.lastUsed.Before(cutoff)
		l.mu.Unlock()
		if stale {
			delete(r.limiters, k)
			evicted++
		}
	}
	return evicted
}
