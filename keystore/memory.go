package keystore

import (
	"context"
	"fmt"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory is an in-memory Store.
type Memory struct {
	mu   sync.RWMutex
	keys map[string]Key
}

// NewMemory returns a Memory store holding keys. Keys are not validated.
func NewMemory(keys ...Key) *Memory {
	m := &Memory{keys: make(map[string]Key, len(keys))}
	for _, k := range keys {
		m.keys[k.ID] = k
	}

	return m
}

// Put adds or replaces a key.
func (m *Memory) Put(k Key) error {
	if err := k.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.keys == nil {
		m.keys = make(map[string]Key)
	}

	m.keys[k.ID] = k

	return nil
}

// Delete removes a key. Deleting an unknown key is a no-op.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, id)
}

// Key returns the full key record for id.
func (m *Memory) Key(id string) (Key, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k, ok := m.keys[id]

	return k, ok
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.keys)
}

// Secret implements Store.
func (m *Memory) Secret(_ context.Context, id string) (string, error) {
	k, ok := m.Key(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}

	return k.Secret, nil
}
