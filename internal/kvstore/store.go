// Package kvstore is the host key-value storage used by the popup to persist
// the last selection and the chosen UI language.
package kvstore

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// KeySelectedText holds the last captured page selection.
	KeySelectedText = "selectedText"

	// KeyUILang holds the last chosen UI locale.
	KeyUILang = "uiLang"
)

// Store reads and writes string values by key.
type Store interface {
	// Get returns the value for key, or None if it was never set.
	Get(ctx context.Context, key string) (fn.Option[string], error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// MemStore is an in-memory Store. Its contents vanish with the process.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

// Get returns the value for key.
func (m *MemStore) Get(_ context.Context, key string) (fn.Option[string],
	error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return fn.None[string](), nil
	}

	return fn.Some(v), nil
}

// Set stores value under key.
func (m *MemStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value

	return nil
}

// Compile-time interface checks.
var (
	_ Store = (*MemStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
