package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tejas3545/project-hub-sub001/internal/storage"
	"github.com/Tejas3545/project-hub-sub001/internal/telemetry"
)

// DefaultReapInterval is how often dead refresh tokens are purged.
const DefaultReapInterval = time.Hour

// TokenReaper periodically deletes revoked and expired refresh tokens.
// Rotation revokes a token on every refresh, so without the reaper the
// table grows by one dead row per session per refresh.
type TokenReaper struct {
	store    storage.AuthTokenStore
	metrics  *telemetry.Metrics // nil = no metrics
	interval time.Duration
}

// NewTokenReaper creates a reaper. interval <= 0 selects the default.
func NewTokenReaper(store storage.AuthTokenStore, metrics *telemetry.Metrics, interval time.Duration) *TokenReaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &TokenReaper{store: store, metrics: metrics, interval: interval}
}

// Run purges dead tokens on a periodic schedule.
func (w *TokenReaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *TokenReaper) reap(ctx context.Context) {
	n, err := w.store.DeleteDeadTokens(ctx, time.Now().UTC())
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "token reap failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if n > 0 {
		slog.Info("refresh tokens reaped", "count", n)
		if w.metrics != nil {
			w.metrics.TokensReaped.Add(float64(n))
		}
	}
}
