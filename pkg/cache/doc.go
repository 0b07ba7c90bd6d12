// Package cache provides the fail-open cache store facade with Redis backend.
//
// The store wraps a shared Redis client with the following features:
//
// - Key namespacing and per-call logical prefixes
// - JSON serialization with raw-string fallback on read
// - Native Redis TTL expiry (no in-process expiry bookkeeping)
// - Pattern-based bulk invalidation (SCAN + DEL)
// - Process-lifetime hit/miss/set/delete/error counters
// - Prometheus metrics for observability
// - Fail-open degradation when the store is unreachable
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache store
//	store := cache.New(redisClient)
//	store.Connect(ctx)
//	defer store.Close()
//
//	// Write with a 10 minute TTL
//	store.Set(ctx, "reports:count", 42, cache.Options{TTL: 10 * time.Minute})
//
//	// Read back
//	if v := store.Get(ctx, "reports:count", cache.Options{}); v != nil {
//		var count int
//		_ = v.Decode(&count)
//	}
//
// # Fail-Open Contract
//
// Every operation degrades to a safe default instead of returning an error:
// Get yields nil, Set/Delete/Exists yield false, InvalidatePattern yields 0.
// When the store connection is down no call is attempted at all; when a call
// fails the errors counter is incremented and the failure is logged at warn
// level. A cache problem is never allowed to become a caller problem.
//
// # Cache-Aside Wrapping
//
//	loadReport := cache.Wrap(store, "reports:"+id, cache.Options{TTL: time.Minute},
//		func(ctx context.Context) (Report, error) {
//			return repo.FindReport(ctx, id)
//		})
//	report, err := loadReport(ctx)
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - bounty_cache_hits_total - Cache hits
//   - bounty_cache_misses_total - Cache misses
//   - bounty_cache_errors_total{operation} - Cache operation errors
//   - bounty_cache_operation_duration_seconds{operation,result} - Operation latency
package cache
