package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tejas3545/project-hub-sub001/internal/storage"
	"github.com/Tejas3545/project-hub-sub001/internal/telemetry"
)

// DefaultRollupInterval is how often the points rollup reconciles totals.
const DefaultRollupInterval = 15 * time.Minute

// PointsRollup periodically recomputes every user's points from completed
// progress and awarded achievements. The incremental award path is correct
// on its own; the rollup exists to self-heal drift from crashes between the
// progress write and the points write.
type PointsRollup struct {
	store    storage.StatsStore
	metrics  *telemetry.Metrics // nil = no metrics
	interval time.Duration
}

// NewPointsRollup creates a rollup worker. interval <= 0 selects the default.
func NewPointsRollup(store storage.StatsStore, metrics *telemetry.Metrics, interval time.Duration) *PointsRollup {
	if interval <= 0 {
		interval = DefaultRollupInterval
	}
	return &PointsRollup{store: store, metrics: metrics, interval: interval}
}

// Run reconciles points on a periodic schedule.
func (w *PointsRollup) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.rollup(ctx)
		}
	}
}

func (w *PointsRollup) rollup(ctx context.Context) {
	adjusted, err := w.store.RecomputePoints(ctx)
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "points rollup failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if adjusted > 0 {
		slog.Info("points rollup corrected drift", "users", adjusted)
		if w.metrics != nil {
			w.metrics.PointsAdjusted.Add(float64(adjusted))
		}
	}
}
