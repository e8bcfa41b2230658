// Package cache stores Roblox page responses between searches.
//
// Entries are grouped by scope (the group id of the search that fetched
// them) so a refresh can drop everything one group produced without touching
// the rest. Two backends implement Store:
//
//   - MemoryStore: process-local map, the default for the CLI and tests
//   - RedisStore: shared Redis backend for the HTTP service
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	key := cache.KeyFromURL("4199740", "https://groups.roblox.com/v1/groups/4199740/roles/1/users?cursor=abc&limit=100")
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from Roblox, then:
//		_ = store.Set(ctx, key, cache.NewEntry(body, 10*time.Minute))
//	}
//
//	// Drop every page cached for the group
//	removed, err := store.Purge(ctx, "4199740")
//
// # Metrics
//
//   - roblox_cache_hits_total{layer} - Cache hits
//   - roblox_cache_misses_total{layer} - Cache misses
//   - roblox_cache_size_bytes{layer} - Bytes held by the memory layer
//   - roblox_cache_written_bytes_total{layer} - Bytes written to the cache
//   - roblox_cache_expired_total{layer} - Expired entries removed by sweeps
//   - roblox_cache_purged_total{layer} - Entries removed by Purge
//   - roblox_cache_errors_total{operation} - Cache operation errors
package cache
