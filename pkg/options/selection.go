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
	"maps"
	"slices"
	"strings"
)

// Selection assigns one Value to every option row, plus derived extras.
//
// # Description
//
// Values holds one entry per OptionRow name. Extras holds auxiliary data
// computed by a Deriver (for example a model-specific keyword bundle) that
// the template needs but that is not itself an option.
//
// A Selection is a mutable value owned by exactly one computation. Use
// Clone before handing it to code that may mutate it.
//
// # Example
//
//	sel := options.NewSelection().
//	    Set("objective", options.String("single")).
//	    Set("custom_threshold", options.Bool(false))
type Selection struct {
	values map[string]Value
	extras map[string]any
}

// NewSelection returns an empty Selection.
func NewSelection() *Selection {
	return &Selection{
		values: make(map[string]Value),
		extras: make(map[string]any),
	}
}

// SelectionOf builds a Selection from native values (see Of).
func SelectionOf(values map[string]any) *Selection {
	sel := NewSelection()
	for name, v := range values {
		sel.values[name] = Of(v)
	}
	return sel
}

// Get returns the value for name and whether it is present.
func (s *Selection) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Value returns the value for name.
//
// Panics with a *MissingFieldError when name is absent: reading a field that
// was never populated is a programming error.
func (s *Selection) Value(name string) Value {
	v, ok := s.values[name]
	if !ok {
		panic(&MissingFieldError{Missing: []string{name}, Present: s.Names()})
	}
	return v
}

// Has reports whether name is present.
func (s *Selection) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Set stores v under name and returns s for chaining.
func (s *Selection) Set(name string, v Value) *Selection {
	s.values[name] = v
	return s
}

// SetDefault stores v only when name is absent. It reports whether it wrote.
func (s *Selection) SetDefault(name string, v Value) bool {
	if _, ok := s.values[name]; ok {
		return false
	}
	s.values[name] = v
	return true
}

// Delete removes name.
func (s *Selection) Delete(name string) {
	delete(s.values, name)
}

// Len returns the number of option values (extras excluded).
func (s *Selection) Len() int { return len(s.values) }

// Names returns the option names present, sorted.
func (s *Selection) Names() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Extra returns an auxiliary value stored by a Deriver.
func (s *Selection) Extra(key string) (any, bool) {
	v, ok := s.extras[key]
	return v, ok
}

// SetExtra stores an auxiliary value and returns s for chaining.
func (s *Selection) SetExtra(key string, v any) *Selection {
	s.extras[key] = v
	return s
}

// Clone copies the selection. Extras are copied shallowly; derivers that
// store maps in extras must replace them rather than mutate them in place.
func (s *Selection) Clone() *Selection {
	return &Selection{
		values: maps.Clone(s.values),
		extras: maps.Clone(s.extras),
	}
}

// Restrict returns a new Selection holding only the listed names that are
// present. Extras are dropped.
func (s *Selection) Restrict(names []string) *Selection {
	out := NewSelection()
	for _, name := range names {
		if v, ok := s.values[name]; ok {
			out.values[name] = v
		}
	}
	return out
}

// Equal compares option values only.
func (s *Selection) Equal(o *Selection) bool {
	return maps.EqualFunc(s.values, o.values, Value.Equal)
}

// Key returns a canonical identity for the full field-value tuple, used to
// de-duplicate selections. Extras are ignored.
func (s *Selection) Key() string {
	var b strings.Builder
	for _, name := range s.Names() {
		v := s.values[name]
		b.WriteString(name)
		b.WriteByte('\x1f')
		b.WriteString(v.kind.String())
		b.WriteByte(':')
		b.WriteString(v.String())
		b.WriteByte('\x1e')
	}
	return b.String()
}

// Map returns the option values as native Go values.
func (s *Selection) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for name, v := range s.values {
		out[name] = v.Interface()
	}
	return out
}

// Strings returns the option values in their display form.
func (s *Selection) Strings() map[string]string {
	out := make(map[string]string, len(s.values))
	for name, v := range s.values {
		out[name] = v.String()
	}
	return out
}

// TemplateData merges native option values and extras into one map for a
// template engine. Extras win on key collisions.
func (s *Selection) TemplateData() map[string]any {
	out := s.Map()
	maps.Copy(out, s.extras)
	return out
}

// MarshalJSON encodes option values as a JSON object.
func (s *Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}

// UnmarshalJSON decodes a JSON object of option values.
func (s *Selection) UnmarshalJSON(data []byte) error {
	values := make(map[string]Value)
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	s.values = values
	if s.extras == nil {
		s.extras = make(map[string]any)
	}
	return nil
}
