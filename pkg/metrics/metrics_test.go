package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	// Registers the bounty_cache_* collectors on the default registerer.
	_ "github.com/triageworks/bounty-admin-api/pkg/cache"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestCacheMetricFamiliesRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := make(map[string]bool, len(families))
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	// Label-free counters are collectable from registration on; the labelled
	// vectors only surface after their first observation and are covered by
	// the cache package tests.
	for _, name := range []string{
		"bounty_cache_hits_total",
		"bounty_cache_misses_total",
		"bounty_cache_sets_total",
		"bounty_cache_deletes_total",
	} {
		if !found[name] {
			t.Errorf("metric family %s is not registered", name)
		}
	}
}
