// Package manifest maps logical asset names to their processed on-disk names.
//
// The manifest is control-plane state: the pipeline updates it through Upsert
// and the host flushes it at end of run through a Store. Entries are created
// or overwritten each time a file is (re)processed and never deleted here;
// garbage collection of stale entries belongs to the host.
package manifest

import "context"

// DefaultName is the conventional manifest filename inside a static root.
// The collector never feeds this file back into the pipeline.
const DefaultName = "staticmanifest.json"

// Manifest is the name-mapping table for one static root.
type Manifest struct {
	// Paths maps a logical asset name to its final, fingerprint-carrying
	// on-disk name.
	Paths map[string]string `json:"paths"`
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{Paths: make(map[string]string)}
}

// Upsert records the mapping for logicalName, overwriting any prior entry.
// Reprocessing an unchanged file produces the same final name, so overwrite
// is harmless.
func (m *Manifest) Upsert(logicalName, finalName string) {
	if m.Paths == nil {
		m.Paths = make(map[string]string)
	}
	m.Paths[logicalName] = finalName
}

// Resolve looks up the final name for logicalName.
func (m *Manifest) Resolve(logicalName string) (string, bool) {
	final, ok := m.Paths[logicalName]
	return final, ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.Paths) }

// Merge upserts every entry of other into m.
func (m *Manifest) Merge(other *Manifest) {
	if other == nil {
		return
	}
	for logical, final := range other.Paths {
		m.Upsert(logical, final)
	}
}

// Store persists a manifest across runs.
//
// Load returns nil when no manifest exists yet (bootstrap signal). Save
// replaces the stored manifest wholesale; callers merge before saving.
type Store interface {
	Load(ctx context.Context) (*Manifest, error)
	Save(ctx context.Context, m *Manifest) error
}
