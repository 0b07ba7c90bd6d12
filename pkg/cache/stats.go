package cache

import (
	"math"
	"sync/atomic"
)

// Stats is a point-in-time snapshot of the process-lifetime cache counters.
// Counters reset only via ResetStats and are lost on process restart.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
	Errors  int64 `json:"errors"`

	// HitRate is hits/(hits+misses) as a percentage, rounded to two
	// decimals. Zero when no lookups have occurred.
	HitRate float64 `json:"hit_rate"`
}

// counters holds the mutable counter state. Atomics because the store is
// shared across request goroutines.
type counters struct {
	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	errors  atomic.Int64
}

func (c *counters) snapshot() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		Errors:  c.errors.Load(),
		HitRate: hitRate(hits, misses),
	}
}

func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
	c.deletes.Store(0)
	c.errors.Store(0)
}

// hitRate computes hits/(hits+misses)*100 rounded to two decimals.
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	rate := float64(hits) / float64(total) * 100
	return math.Round(rate*100) / 100
}
