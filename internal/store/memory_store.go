package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore is the SnapshotStore used when no redis is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (ms *MemoryStore) Save(_ context.Context, pollID string, snapshot []byte) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	prev, ok := ms.snapshots[pollID]
	ms.snapshots[pollID] = bytes.Clone(snapshot)
	return !ok || !bytes.Equal(prev, snapshot), nil
}

func (ms *MemoryStore) Latest(_ context.Context, pollID string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	data, ok := ms.snapshots[pollID]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return bytes.Clone(data), nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
