// Package file provides a file-based manifest Store.
//
// The manifest is persisted as a versioned JSON envelope:
//
//	{"version": 1, "paths": { ... }}
//
// Writes are atomic via temp file + rename with round-trip validation, so a
// crash mid-save leaves the previous manifest intact.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"assetpress/internal/manifest"
)

const currentVersion = 1

// envelope is the versioned on-disk format.
type envelope struct {
	Version int               `json:"version"`
	Paths   map[string]string `json:"paths"`
}

// Store is a file-based manifest store.
type Store struct {
	path string
}

var _ manifest.Store = (*Store)(nil)

// NewStore creates a store persisting to the given JSON file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the manifest from disk. Returns nil if the file does not exist.
func (s *Store) Load(ctx context.Context) (*manifest.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse manifest file: %w", err)
	}
	if env.Version > currentVersion {
		return nil, fmt.Errorf("manifest version %d is newer than supported version %d", env.Version, currentVersion)
	}

	m := manifest.New()
	for logical, final := range env.Paths {
		m.Upsert(logical, final)
	}
	return m, nil
}

// Save atomically writes the manifest to disk.
func (s *Store) Save(ctx context.Context, m *manifest.Manifest) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	env := envelope{Version: currentVersion, Paths: m.Paths}
	if env.Paths == nil {
		env.Paths = map[string]string{}
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Round-trip validation: re-read and verify valid JSON before the rename.
	check, err := os.ReadFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("read-back temp file: %w", err)
	}
	var verify envelope
	if err := json.Unmarshal(check, &verify); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("round-trip validation failed: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename manifest file: %w", err)
	}
	return nil
}
