package storage

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemoryStore returns a store whose container lives in process memory.
// Records are still round-tripped through JSON, so callers never share slices
// with the store.
func NewMemoryStore() *Store {
	return newStore(DefaultContainer, &memoryBackend{}, nil)
}

// NewMemoryStoreWithData returns a memory store whose container initially
// holds raw. It is used to exercise corrupt-container recovery.
func NewMemoryStoreWithData(raw []byte) *Store {
	return newStore(DefaultContainer, &memoryBackend{data: raw, set: true}, nil)
}

func (m *memoryBackend) read(_ context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, true, nil
}

func (m *memoryBackend) write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data[:0], data...)
	m.set = true
	return nil
}

func (m *memoryBackend) close() error { return nil }
