package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks cache hits
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bounty_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// cacheMisses tracks cache misses
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bounty_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// cacheSets tracks successful cache writes
	cacheSets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bounty_cache_sets_total",
			Help: "Total number of cache writes",
		},
	)

	// cacheDeletes tracks removed keys, including pattern invalidations
	cacheDeletes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bounty_cache_deletes_total",
			Help: "Total number of cache keys removed",
		},
	)

	// cacheErrors tracks cache operation errors
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bounty_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "invalidate", ...
	)

	// cacheOpDuration tracks per-operation latency tagged with the outcome
	cacheOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bounty_cache_operation_duration_seconds",
			Help:    "Cache operation duration in seconds by operation and result",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation", "result"}, // result: "hit", "miss", "ok", "error"
	)
)

func observeOp(operation, result string, start time.Time) {
	cacheOpDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}
