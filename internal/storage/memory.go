package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used for tests and the "memory" driver.
// Atomic stages writes in an overlay and applies them only when the scope
// succeeds, matching the transactional backends.
type MemoryStore struct {
	mu   sync.Mutex
	data map[Key][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Key][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Atomic(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		base:    m.data,
		writes:  make(map[Key][]byte),
		deletes: make(map[Key]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for key := range tx.deletes {
		delete(m.data, key)
	}
	for key, value := range tx.writes {
		m.data[key] = value
	}
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// memoryTx overlays pending writes on the committed map. The enclosing
// MemoryStore holds its lock for the whole scope, so base reads are safe.
type memoryTx struct {
	base    map[Key][]byte
	writes  map[Key][]byte
	deletes map[Key]bool
}

func (t *memoryTx) Get(_ context.Context, key Key) ([]byte, bool, error) {
	if t.deletes[key] {
		return nil, false, nil
	}
	if raw, ok := t.writes[key]; ok {
		return raw, true, nil
	}
	raw, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

func (t *memoryTx) Set(_ context.Context, key Key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	t.writes[key] = cp
	delete(t.deletes, key)
	return nil
}

func (t *memoryTx) Delete(_ context.Context, key Key) error {
	delete(t.writes, key)
	t.deletes[key] = true
	return nil
}

// Atomic on a transaction joins the enclosing scope.
func (t *memoryTx) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *memoryTx) Ping(context.Context) error {
	return nil
}
