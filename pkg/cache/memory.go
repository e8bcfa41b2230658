package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const layerMemory = "memory"

// DefaultSweepInterval is how often Set scans a MemoryStore for expired
// entries.
const DefaultSweepInterval = time.Minute

// MemoryStore is an in-process Store. Expired entries are dropped when read
// and by a sweep that runs from Set at most once per sweep interval.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	bytes   int

	sweepInterval time.Duration
	lastSweep     time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:       make(map[string]*CacheEntry),
		sweepInterval: DefaultSweepInterval,
		lastSweep:     time.Now(),
	}
}

// Get retrieves a cache entry by key.
func (m *MemoryStore) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	k := key.String()

	m.mu.RLock()
	entry, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}
	if entry.IsExpired() {
		m.mu.Lock()
		if cur, ok := m.entries[k]; ok && cur == entry {
			m.removeLocked(k)
		}
		m.mu.Unlock()
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layerMemory).Inc()
	copied := *entry
	return &copied, nil
}

// Set stores a cache entry until its Expires time.
func (m *MemoryStore) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if entry.TTL() <= 0 {
		return nil
	}

	copied := *entry
	k := key.String()

	m.mu.Lock()
	m.removeLocked(k)
	m.entries[k] = &copied
	m.bytes += len(copied.Data)
	CacheSize.WithLabelValues(layerMemory).Add(float64(len(copied.Data)))

	if now := time.Now(); now.Sub(m.lastSweep) >= m.sweepInterval {
		m.lastSweep = now
		m.sweepLocked(now)
	}
	m.mu.Unlock()

	CacheWrittenBytes.WithLabelValues(layerMemory).Add(float64(len(entry.Data)))
	return nil
}

// Delete removes a cache entry.
func (m *MemoryStore) Delete(ctx context.Context, key CacheKey) error {
	m.mu.Lock()
	m.removeLocked(key.String())
	m.mu.Unlock()
	return nil
}

// Purge removes every entry in scope.
func (m *MemoryStore) Purge(ctx context.Context, scope string) (int, error) {
	prefix := ScopePrefix(scope)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			m.removeLocked(k)
			removed++
		}
	}

	CachePurged.WithLabelValues(layerMemory).Add(float64(removed))
	return removed, nil
}

// Len returns the number of stored entries. Expired entries count until a
// read or a sweep drops them.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Bytes returns the total payload size of the stored entries.
func (m *MemoryStore) Bytes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bytes
}

// sweepLocked drops every entry expired at now. m.mu must be held.
func (m *MemoryStore) sweepLocked(now time.Time) int {
	swept := 0
	for k, entry := range m.entries {
		if now.After(entry.Expires) {
			m.removeLocked(k)
			swept++
		}
	}
	if swept > 0 {
		CacheExpired.WithLabelValues(layerMemory).Add(float64(swept))
	}
	return swept
}

// removeLocked deletes k and releases its bytes. m.mu must be held.
func (m *MemoryStore) removeLocked(k string) {
	entry, ok := m.entries[k]
	if !ok {
		return
	}
	delete(m.entries, k)
	m.bytes -= len(entry.Data)
	CacheSize.WithLabelValues(layerMemory).Sub(float64(len(entry.Data)))
}
