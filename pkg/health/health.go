// Package health classifies the backing cache store's responsiveness from a
// single round-trip probe. It is a point-in-time report for operational
// visibility, not a circuit breaker: it never gates traffic.
package health

import (
	"context"
	"time"
)

// Status represents the probed health of the backing store.
type Status string

const (
	// StatusHealthy means the probe succeeded under the degraded threshold.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the probe succeeded but took at least the
	// degraded threshold.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means the probe failed.
	StatusUnhealthy Status = "unhealthy"
)

// DegradedThreshold is the probe latency at which a reachable store is
// reported as degraded.
const DegradedThreshold = 100 * time.Millisecond

// Probe issues a round-trip against the backing store (e.g. a Redis PING).
type Probe func(ctx context.Context) error

// Result is the outcome of a single health check.
type Result struct {
	Status    Status    `json:"status"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Check runs the probe, measures elapsed time, and classifies the outcome.
func Check(ctx context.Context, probe Probe) Result {
	start := time.Now()
	err := probe(ctx)
	elapsed := time.Since(start)

	result := Result{
		LatencyMS: elapsed.Milliseconds(),
		CheckedAt: start.UTC(),
	}

	switch {
	case err != nil:
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	case elapsed >= DegradedThreshold:
		result.Status = StatusDegraded
	default:
		result.Status = StatusHealthy
	}
	return result
}
