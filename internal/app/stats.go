package app

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage"
)

const (
	// leaderboardTTL trades a little staleness for not hammering the
	// aggregate query on every page load.
	leaderboardTTL = 30 * time.Second

	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// Stats serves the points leaderboard with a short-lived cache in front of
// the aggregate query.
type Stats struct {
	store storage.StatsStore
	cache *otter.Cache[int, []*hub.LeaderboardEntry]
}

// NewStats returns a Stats service backed by store.
func NewStats(store storage.StatsStore) (*Stats, error) {
	c, err := otter.New(&otter.Options[int, []*hub.LeaderboardEntry]{
		MaximumSize:      16, // one entry per distinct limit
		ExpiryCalculator: otter.ExpiryWriting[int, []*hub.LeaderboardEntry](leaderboardTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create leaderboard cache: %w", err)
	}
	return &Stats{store: store, cache: c}, nil
}

// Leaderboard returns the top users by points.
func (s *Stats) Leaderboard(ctx context.Context, limit int) ([]*hub.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	if entries, ok := s.cache.GetIfPresent(limit); ok {
		return entries, nil
	}
	entries, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(limit, entries)
	return entries, nil
}
