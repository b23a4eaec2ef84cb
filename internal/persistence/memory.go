package persistence

import (
	"context"
	"sync"
)

// MemoryKV keeps documents in process memory.
type MemoryKV struct {
	mu   sync.RWMutex
	docs map[string][]byte
	// FailSave, when set, is returned by Save before anything is written.
	FailSave error
}

// NewMemoryKV builds an empty store, optionally pre-filled with docs.
func NewMemoryKV(docs map[string][]byte) *MemoryKV {
	m := &MemoryKV{docs: make(map[string][]byte, len(docs))}
	for k, v := range docs {
		m.docs[k] = append([]byte(nil), v...)
	}
	return m
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Save(_ context.Context, docs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	for k, v := range docs {
		if v == nil {
			delete(m.docs, k)
			continue
		}
		m.docs[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryKV) Ping(context.Context) error { return nil }

func (m *MemoryKV) Close() error { return nil }
