// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package options

import (
	"encoding/json"
)

// Deviation is one {name: value} substitution flagged for the UI.
type Deviation struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Label returns the "name-value" identifier used for radio labels.
func (d Deviation) Label() string {
	return d.Name + DefaultFieldSep + d.Value.String()
}

// DeviationSet is an ordered set of deviations.
//
// A row may appear more than once when several of its options cross the
// boundary; each (name, value) pair appears at most once.
type DeviationSet struct {
	items []Deviation
	seen  map[string]struct{}
}

func newDeviationSet() *DeviationSet {
	return &DeviationSet{seen: make(map[string]struct{})}
}

func (d *DeviationSet) add(name string, v Value) {
	key := name + "\x1f" + v.kind.String() + ":" + v.String()
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	d.items = append(d.items, Deviation{Name: name, Value: v})
}

// Items returns the deviations in discovery order.
func (d *DeviationSet) Items() []Deviation { return append([]Deviation(nil), d.items...) }

// Len returns the number of deviations.
func (d *DeviationSet) Len() int { return len(d.items) }

// Contains reports whether (name, v) is flagged.
func (d *DeviationSet) Contains(name string, v Value) bool {
	_, ok := d.seen[name+"\x1f"+v.kind.String()+":"+v.String()]
	return ok
}

// ContainsLabel reports whether any flagged value of name displays as s.
func (d *DeviationSet) ContainsLabel(name, s string) bool {
	for _, item := range d.items {
		if item.Name == name && item.Value.String() == s {
			return true
		}
	}
	return false
}

// Labels returns "name-value" identifiers for every deviation.
func (d *DeviationSet) Labels() []string {
	out := make([]string, len(d.items))
	for i, item := range d.items {
		out[i] = item.Label()
	}
	return out
}

// MarshalJSON encodes the deviations as a list.
func (d *DeviationSet) MarshalJSON() ([]byte, error) {
	if d.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.items)
}

// Deviations runs the one-hop neighbor search around current.
//
// # Description
//
// Finds every single-field substitution of a visible row that produces an
// incompatible configuration, so a UI can strike through those choices:
//
//  1. Prepare current to learn whether it is valid.
//  2. Restrict current to the visible rows (the "base").
//  3. For each visible row and each option whose display form differs from
//     the base, substitute it into a copy of the base and prepare it.
//  4. Keep incompatible neighbors, de-duplicated by their full derived
//     field-value tuple (not by which field changed).
//  5. For each kept neighbor, flag every visible field where it differs from
//     the base.
//  6. If current itself is invalid, also flag every visible field at its
//     current value.
//
// Cost is one Prepare per alternative option: linear in the total number of
// visible option values.
//
// # Inputs
//
//   - current: a selection holding every visible row (hidden rows optional)
//
// # Outputs
//
//   - *DeviationSet: flagged substitutions
//
// # Limitations
//
//   - Panics with a *MissingFieldError if a visible row is missing.
//   - Hidden values given explicitly in current take part in the verdict on
//     current itself (step 1) but not in the neighbor checks, which start from
//     the restricted base and re-derive them.
//   - Two substitutions that derive to the same full record collapse into one
//     neighbor; the first one found wins.
func (e *Engine) Deviations(current *Selection) *DeviationSet {
	currentValid := !e.Incompatible(current)
	base := current.Restrict(e.schema.visibleNames)
	RequireFields(e.schema.visibleNames, base)

	seen := make(map[string]struct{})
	var invalid []*Selection
	for _, row := range e.schema.visible {
		at := base.Value(row.Name).String()
		for _, option := range row.Options {
			if option.String() == at {
				continue
			}
			neighbor := base.Clone().Set(row.Name, option)
			full := e.Complete(neighbor)
			if !e.compat.Incompatible(full) {
				continue
			}
			key := full.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			invalid = append(invalid, full)
		}
	}

	out := newDeviationSet()
	for _, neighbor := range invalid {
		for _, name := range e.schema.visibleNames {
			v := neighbor.Value(name)
			if v.String() != base.Value(name).String() {
				out.add(name, v)
			}
		}
	}
	if !currentValid {
		for _, name := range e.schema.visibleNames {
			out.add(name, base.Value(name))
		}
	}
	return out
}
