package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_cache_hits_total",
			Help: "Total number of Roblox page cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks cache misses by layer
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_cache_misses_total",
			Help: "Total number of Roblox page cache misses",
		},
		[]string{"layer"},
	)

	// CacheSize tracks bytes currently held by the memory layer. Redis
	// expires keys on its own, so the redis layer reports written bytes only.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roblox_cache_size_bytes",
			Help: "Bytes currently held by the in-process Roblox page cache",
		},
		[]string{"layer"},
	)

	// CacheWrittenBytes tracks bytes written by layer
	CacheWrittenBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_cache_written_bytes_total",
			Help: "Total bytes written to the Roblox page cache",
		},
		[]string{"layer"},
	)

	// CacheExpired tracks expired entries removed by sweeps
	CacheExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_cache_expired_total",
			Help: "Total number of expired cache entries removed by sweeps",
		},
		[]string{"layer"},
	)

	// CachePurged tracks entries removed by scope purges
	CachePurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_cache_purged_total",
			Help: "Total number of cache entries removed by scope purges",
		},
		[]string{"layer"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "purge"
	)
)
