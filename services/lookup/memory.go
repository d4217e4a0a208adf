// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lookup

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps entries in a map.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	manifest *Manifest
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Put stores a copy of e.
func (m *MemoryStore) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.Stem] = cloneEntry(e)
	return nil
}

// Get returns a copy of the entry for stem.
func (m *MemoryStore) Get(_ context.Context, stem string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[stem]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, stem)
	}
	return cloneEntry(e), nil
}

// SetOutcome updates the outcome for stem.
func (m *MemoryStore) SetOutcome(_ context.Context, stem string, outcome Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[stem]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, stem)
	}
	e.Outcome = outcome
	m.entries[stem] = e
	return nil
}

// List returns every entry sorted by stem.
func (m *MemoryStore) List(context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, cloneEntry(e))
	}
	sortEntries(out)
	return out, nil
}

// PutManifest records m.
func (m *MemoryStore) PutManifest(_ context.Context, manifest Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	manifest.Names = slices.Clone(manifest.Names)
	m.manifest = &manifest
	return nil
}

// Manifest returns the recorded manifest.
func (m *MemoryStore) Manifest(context.Context) (Manifest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.manifest == nil {
		return Manifest{}, fmt.Errorf("%w: manifest", ErrNotFound)
	}
	out := *m.manifest
	out.Names = slices.Clone(out.Names)
	return out, nil
}

// Reset clears the store.
func (m *MemoryStore) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	m.manifest = nil
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func cloneEntry(e Entry) Entry {
	e.Values = slices.Clone(e.Values)
	e.Violations = slices.Clone(e.Violations)
	return e
}

var _ Store = (*MemoryStore)(nil)
