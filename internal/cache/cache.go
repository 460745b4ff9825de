// Package cache provides TTL response caching for Project Hub. It backs the
// API client's GET cache and the server-side catalog and leaderboard caches.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for TTL-bounded byte caching.
type Cache interface {
	// Get retrieves a cached value by key. Expired entries are treated as absent.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// Delete removes a cached value.
	Delete(ctx context.Context, key string)
	// Purge removes all cached values.
	Purge(ctx context.Context)
}
