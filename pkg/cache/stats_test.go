package cache

import "testing"

func TestHitRate(t *testing.T) {
	tests := []struct {
		name   string
		hits   int64
		misses int64
		want   float64
	}{
		{"no lookups", 0, 0, 0},
		{"all hits", 10, 0, 100},
		{"all misses", 0, 10, 0},
		{"half", 5, 5, 50},
		{"two thirds rounded", 2, 1, 66.67},
		{"one third rounded", 1, 2, 33.33},
		{"one of seven", 1, 6, 14.29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hitRate(tt.hits, tt.misses); got != tt.want {
				t.Errorf("hitRate(%d, %d) = %v, want %v", tt.hits, tt.misses, got, tt.want)
			}
		})
	}
}

func TestCounters_SnapshotAndReset(t *testing.T) {
	var c counters
	c.hits.Add(3)
	c.misses.Add(1)
	c.sets.Add(4)
	c.deletes.Add(2)
	c.errors.Add(1)

	s := c.snapshot()
	if s.Hits != 3 || s.Misses != 1 || s.Sets != 4 || s.Deletes != 2 || s.Errors != 1 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.HitRate != 75 {
		t.Errorf("HitRate = %v, want 75", s.HitRate)
	}

	c.reset()
	s = c.snapshot()
	if s != (Stats{}) {
		t.Errorf("snapshot after reset = %+v, want zero", s)
	}
}
