package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/github"
	"github.com/Tejas3545/project-hub-sub001/internal/telemetry"
)

// DefaultSyncInterval is how often GitHub metadata is refreshed.
const DefaultSyncInterval = time.Hour

// RepoFetcher fetches repository metadata.
type RepoFetcher interface {
	FetchRepo(ctx context.Context, repoURL string) (*github.RepoMeta, error)
}

// SyncStore is the persistence interface consumed by GitHubSync.
type SyncStore interface {
	ListSyncableProjects(ctx context.Context) ([]*hub.Project, error)
	UpdateRepoMeta(ctx context.Context, id string, stars int, topics []string) error
}

// GitHubSync periodically refreshes stars and topics on github-sourced
// projects. One pass walks every syncable project sequentially; the fetcher's
// circuit breaker aborts the pass early when the upstream is down.
type GitHubSync struct {
	store    SyncStore
	fetcher  RepoFetcher
	metrics  *telemetry.Metrics // nil = no metrics
	interval time.Duration
}

// NewGitHubSync creates a sync worker. interval <= 0 selects the default.
func NewGitHubSync(store SyncStore, fetcher RepoFetcher, metrics *telemetry.Metrics, interval time.Duration) *GitHubSync {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &GitHubSync{store: store, fetcher: fetcher, metrics: metrics, interval: interval}
}

// Run refreshes repo metadata on a periodic schedule.
func (w *GitHubSync) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

func (w *GitHubSync) sync(ctx context.Context) {
	if w.metrics != nil {
		w.metrics.SyncRuns.Inc()
	}
	projects, err := w.store.ListSyncableProjects(ctx)
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "sync list failed",
			slog.String("error", err.Error()),
		)
		if w.metrics != nil {
			w.metrics.SyncErrors.Inc()
		}
		return
	}

	updated := 0
	for _, p := range projects {
		meta, err := w.fetcher.FetchRepo(ctx, p.RepoURL)
		if err != nil {
			if errors.Is(err, github.ErrUpstreamDown) {
				// Breaker is open; the rest of the pass would fail the same way.
				slog.LogAttrs(ctx, slog.LevelWarn, "sync aborted, github circuit open",
					slog.Int("remaining", len(projects)-updated),
				)
				if w.metrics != nil {
					w.metrics.SyncErrors.Inc()
				}
				return
			}
			slog.LogAttrs(ctx, slog.LevelWarn, "repo fetch failed",
				slog.String("project_id", p.ID),
				slog.String("repo_url", p.RepoURL),
				slog.String("error", err.Error()),
			)
			continue
		}
		if meta.Stars == p.Stars && equalStrings(meta.Topics, p.Topics) {
			continue
		}
		if err := w.store.UpdateRepoMeta(ctx, p.ID, meta.Stars, meta.Topics); err != nil {
			slog.LogAttrs(ctx, slog.LevelError, "repo meta update failed",
				slog.String("project_id", p.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		updated++
		if w.metrics != nil {
			w.metrics.SyncRepoUpdates.Inc()
		}
	}
	slog.Info("github sync completed", "projects", len(projects), "updated", updated)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
