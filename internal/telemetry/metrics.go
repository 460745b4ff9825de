// Package telemetry provides observability primitives for Project Hub.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the hub.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ActiveRequests   prometheus.Gauge
	RateLimitRejects prometheus.Counter
	SyncRuns         prometheus.Counter
	SyncErrors       prometheus.Counter
	SyncRepoUpdates  prometheus.Counter
	TokensReaped     prometheus.Counter
	PointsAdjusted   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "projecthub",
			Name:                            "request_duration_seconds",
			Help:                            "HTTP request duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"method", "path"}),

		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "projecthub",
			Name:      "active_requests",
			Help:      "Number of currently active requests.",
		}),

		RateLimitRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "ratelimit_rejects_total",
			Help:      "Total rate limit rejections.",
		}),

		SyncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "github_sync_runs_total",
			Help:      "Total GitHub metadata sync passes.",
		}),

		SyncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "github_sync_errors_total",
			Help:      "Total GitHub metadata sync failures.",
		}),

		SyncRepoUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "github_sync_repo_updates_total",
			Help:      "Total repositories whose metadata was refreshed.",
		}),

		TokensReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "refresh_tokens_reaped_total",
			Help:      "Total dead refresh tokens deleted by the reaper.",
		}),

		PointsAdjusted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "projecthub",
			Name:      "points_rollup_adjusted_total",
			Help:      "Total users whose points the rollup corrected.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ActiveRequests,
		m.RateLimitRejects,
		m.SyncRuns,
		m.SyncErrors,
		m.SyncRepoUpdates,
		m.TokensReaped,
		m.PointsAdjusted,
	)

	return m
}
