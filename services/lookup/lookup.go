// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lookup stores the stem-keyed tables produced by a generation run.
//
// Every combination yields one Entry. Compatible entries carry the rendered
// script and its preamble; incompatible ones carry the INVALID message and
// the names of the rules that fired. Test outcomes are merged in afterwards
// by stem.
//
// Two stores are provided: MemoryStore for a single process and BadgerStore
// for handing results from `honegumi generate` to `honegumi serve`.
package lookup

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"
)

// ErrNotFound is returned when no entry exists for a stem.
var ErrNotFound = errors.New("stem not found")

// Outcome is the result of a combination's generated test.
type Outcome string

const (
	OutcomeUntested Outcome = "untested"
	OutcomePassed   Outcome = "passed"
	OutcomeFailed   Outcome = "failed"
	OutcomeSkipped  Outcome = "skipped"
)

// Entry is everything recorded for one combination.
type Entry struct {
	Stem       string   `json:"stem"`
	LookupKey  string   `json:"lookup_key"`
	Values     []string `json:"values"`
	Compatible bool     `json:"compatible"`
	Violations []string `json:"violations,omitempty"`
	Script     string   `json:"script"`
	Preamble   string   `json:"preamble"`
	Outcome    Outcome  `json:"outcome"`
}

// Valid reports whether the entry is usable: logically compatible and not
// failing its generated test.
func (e Entry) Valid() bool {
	return e.Compatible && e.Outcome != OutcomeFailed
}

// Manifest describes the run that filled a store.
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Names       []string  `json:"names"`
	Total       int       `json:"total"`
	Compatible  int       `json:"compatible"`
}

// Store persists entries keyed by stem.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put inserts or replaces the entry for e.Stem.
	Put(ctx context.Context, e Entry) error

	// Get returns the entry for stem, or ErrNotFound.
	Get(ctx context.Context, stem string) (Entry, error)

	// SetOutcome updates the outcome of an existing entry.
	SetOutcome(ctx context.Context, stem string, outcome Outcome) error

	// List returns every entry sorted by stem.
	List(ctx context.Context) ([]Entry, error)

	// PutManifest records run metadata.
	PutManifest(ctx context.Context, m Manifest) error

	// Manifest returns the recorded run metadata, or ErrNotFound.
	Manifest(ctx context.Context) (Manifest, error)

	// Reset removes every entry and the manifest.
	Reset(ctx context.Context) error

	Close() error
}

// =============================================================================
// Tables
// =============================================================================

// Tables is the shape embedded in the generated site.
type Tables struct {
	// Scripts maps stem to rendered script (or the INVALID message).
	Scripts map[string]string `json:"scripts"`

	// Preambles maps stem to the badge markup shown above a script.
	Preambles map[string]string `json:"preambles"`

	// Outcomes maps stem to whether the combination is usable.
	Outcomes map[string]bool `json:"outcomes"`

	// Stems maps a comma-joined value key to its stem for radio lookups.
	Stems map[string]string `json:"stems"`

	// InvalidStems lists the stems that are incompatible or failed testing.
	InvalidStems []string `json:"invalid_stems"`

	// InvalidConfigs lists the visible values of every invalid stem.
	InvalidConfigs [][]string `json:"invalid_configs"`
}

// BuildTables projects entries into the page tables. Input order does not
// matter; invalid lists come out sorted by stem.
func BuildTables(entries []Entry) Tables {
	t := Tables{
		Scripts:        make(map[string]string, len(entries)),
		Preambles:      make(map[string]string, len(entries)),
		Outcomes:       make(map[string]bool, len(entries)),
		Stems:          make(map[string]string, len(entries)),
		InvalidStems:   []string{},
		InvalidConfigs: [][]string{},
	}

	sorted := slices.Clone(entries)
	sortEntries(sorted)

	for _, e := range sorted {
		t.Scripts[e.Stem] = e.Script
		t.Preambles[e.Stem] = e.Preamble
		t.Outcomes[e.Stem] = e.Valid()
		if e.LookupKey != "" {
			t.Stems[e.LookupKey] = e.Stem
		}
		if !e.Valid() {
			t.InvalidStems = append(t.InvalidStems, e.Stem)
			t.InvalidConfigs = append(t.InvalidConfigs, slices.Clone(e.Values))
		}
	}
	return t
}

// Load lists every entry in s and builds its tables.
func Load(ctx context.Context, s Store) (Tables, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return Tables{}, err
	}
	return BuildTables(entries), nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Stem < entries[j].Stem })
}
