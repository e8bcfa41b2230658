package store

import (
	"context"
	"sync"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
)

// MemoryStore keeps the latest snapshot per group in process memory. It is
// used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	latest map[int64]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[int64]Snapshot)}
}

func (m *MemoryStore) Save(ctx context.Context, snapshot *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	snapshot.ID = m.nextID
	m.latest[snapshot.GroupID] = *snapshot
	return nil
}

func (m *MemoryStore) Latest(ctx context.Context, groupID roblox.GroupID) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.latest[int64(groupID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &snapshot, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
