// Package memory provides an in-memory manifest Store.
package memory

import (
	"context"
	"sync"

	"assetpress/internal/manifest"
)

// Store is an in-memory manifest store. Intended for testing; nothing is
// persisted across restarts.
type Store struct {
	mu sync.RWMutex
	m  *manifest.Manifest
}

var _ manifest.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Load returns a copy of the stored manifest, or nil if nothing was saved.
func (s *Store) Load(ctx context.Context) (*manifest.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.m == nil {
		return nil, nil
	}
	return copyManifest(s.m), nil
}

// Save stores a copy of m.
func (s *Store) Save(ctx context.Context, m *manifest.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = copyManifest(m)
	return nil
}

// copyManifest deep-copies a manifest so callers cannot mutate stored state.
func copyManifest(m *manifest.Manifest) *manifest.Manifest {
	c := manifest.New()
	c.Merge(m)
	return c
}
