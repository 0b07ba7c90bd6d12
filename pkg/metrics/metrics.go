// Package metrics provides the centralized Prometheus metrics registry for
// the bounty admin API. All metrics are defined in their respective packages
// (cache, internal/api) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - bounty_cache_hits_total (Counter): Cache hits
//   - bounty_cache_misses_total (Counter): Cache misses, including fail-open reads
//   - bounty_cache_sets_total (Counter): Successful cache writes
//   - bounty_cache_deletes_total (Counter): Keys removed by delete and invalidation
//   - bounty_cache_errors_total{operation} (Counter): Cache operation errors
//   - bounty_cache_operation_duration_seconds{operation, result} (Histogram):
//     Redis operation duration
//
// Request Metrics (internal/api):
//   - bounty_http_requests_total{route, method, status} (Counter): Requests by
//     route template and HTTP status
//   - bounty_http_request_duration_seconds{route} (Histogram): Request duration
//     by route template
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(bounty_cache_hits_total[5m])) /
//   (sum(rate(bounty_cache_hits_total[5m])) + sum(rate(bounty_cache_misses_total[5m])))
//
//   # Cache Error Rate by Operation
//   rate(bounty_cache_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(bounty_http_request_duration_seconds_bucket[5m]))
//
//   # P95 Redis Latency per Operation
//   histogram_quantile(0.95, rate(bounty_cache_operation_duration_seconds_bucket[5m]))
