package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a page cache backend. Implementations are safe for concurrent use.
type Store interface {
	// Get returns ErrCacheMiss if the key doesn't exist or the entry is expired.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)

	// Set stores entry until entry.Expires. Already expired entries are ignored.
	Set(ctx context.Context, key CacheKey, entry *CacheEntry) error

	// Delete removes a single entry.
	Delete(ctx context.Context, key CacheKey) error

	// Purge removes every entry in scope and returns how many were removed.
	Purge(ctx context.Context, scope string) (int, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
