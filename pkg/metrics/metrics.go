// Package metrics documents the Prometheus metrics of the leaderboard
// packages. Metrics are defined in their own packages (client, cache,
// pagination, ratelimit, search) to keep them modular and avoid import
// cycles; this package gives one place to find them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	// Imported for their promauto registrations.
	_ "github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/cache"
	_ "github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	_ "github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/pagination"
	_ "github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/ratelimit"
	_ "github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
)

// Registry is the Prometheus registerer every package registers with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer, served on /metrics.
var Gatherer = prometheus.DefaultGatherer

// Names lists every metric family defined by the packages.
var Names = []string{
	// pkg/client
	"roblox_requests_total",
	"roblox_request_duration_seconds",
	"roblox_errors_total",
	"roblox_csrf_refresh_total",
	"roblox_retries_total",
	"roblox_retry_backoff_seconds",
	"roblox_retry_exhausted_total",

	// pkg/ratelimit
	"roblox_ratelimit_remaining",
	"roblox_ratelimit_blocks_total",
	"roblox_ratelimit_throttles_total",

	// pkg/cache
	"roblox_cache_hits_total",
	"roblox_cache_misses_total",
	"roblox_cache_size_bytes",
	"roblox_cache_written_bytes_total",
	"roblox_cache_expired_total",
	"roblox_cache_purged_total",
	"roblox_cache_errors_total",

	// pkg/pagination
	"roblox_pages_total",
	"roblox_pagination_cursor_repeats_total",

	// pkg/search
	"richest_search_runs_total",
	"richest_search_duration_seconds",
	"richest_search_member_failures_total",
	"richest_search_in_flight",
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - roblox_requests_total{host, status} (Counter): requests by host and HTTP status
//   - roblox_request_duration_seconds{host} (Histogram): request duration by host
//   - roblox_errors_total{class} (Counter): errors by class (client, server, rate_limit, network, parse)
//   - roblox_csrf_refresh_total (Counter): POSTs replayed with a refreshed x-csrf-token
//   - roblox_retries_total{error_class} (Counter): retry attempts
//   - roblox_retry_backoff_seconds{error_class} (Histogram): backoff before each retry
//   - roblox_retry_exhausted_total{error_class} (Counter): requests that ran out of attempts
//
// Rate Limit Metrics (pkg/ratelimit):
//   - roblox_ratelimit_remaining (Gauge): requests left in the last observed window
//   - roblox_ratelimit_blocks_total (Counter): requests that waited for a window reset
//   - roblox_ratelimit_throttles_total (Counter): requests delayed in the warning state
//
// Cache Metrics (pkg/cache):
//   - roblox_cache_hits_total{layer} / roblox_cache_misses_total{layer} (Counter)
//   - roblox_cache_size_bytes{layer} (Gauge): bytes held by the memory layer
//   - roblox_cache_written_bytes_total{layer} (Counter): bytes written by layer
//   - roblox_cache_expired_total{layer} (Counter): expired entries removed by sweeps
//   - roblox_cache_purged_total{layer} (Counter): entries removed by scope purges
//   - roblox_cache_errors_total{operation} (Counter)
//
// Pagination Metrics (pkg/pagination):
//   - roblox_pages_total{source} (Counter): pages served from network or cache
//   - roblox_pagination_cursor_repeats_total (Counter): collections stopped on a repeated cursor
//
// Search Metrics (pkg/search):
//   - richest_search_runs_total{outcome} (Counter): done, failed, superseded
//   - richest_search_duration_seconds (Histogram)
//   - richest_search_member_failures_total (Counter): members skipped
//   - richest_search_in_flight (Gauge)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(roblox_cache_hits_total[5m])) /
//   (sum(rate(roblox_cache_hits_total[5m])) + sum(rate(roblox_cache_misses_total[5m])))
//
//   # Rate limited requests
//   rate(roblox_errors_total{class="rate_limit"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(roblox_request_duration_seconds_bucket[5m]))
//
//   # Share of searches replaced by a newer one
//   rate(richest_search_runs_total{outcome="superseded"}[1h]) / rate(richest_search_runs_total[1h])
