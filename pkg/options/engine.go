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

import "fmt"

// Deriver fills dependent fields of a selection in place.
//
// Derive receives the schema's option names and must leave every one of them
// populated (hidden rows included) or panic via RequireFields. It returns sel
// for chaining.
type Deriver interface {
	Derive(names []string, sel *Selection) *Selection
}

// DeriveFunc adapts a plain function to Deriver.
type DeriveFunc func(names []string, sel *Selection) *Selection

// Derive calls f.
func (f DeriveFunc) Derive(names []string, sel *Selection) *Selection { return f(names, sel) }

// Combination is one prepared selection with its verdict.
//
// Compatible is computed once in Engine.Prepare and never recomputed.
type Combination struct {
	Selection  *Selection
	Stem       string
	Compatible bool

	// Violations names the rules that fired, when the predicate can explain itself.
	Violations []string
}

// Engine binds a Schema, a Compatibility predicate and a Deriver.
//
// # Description
//
// Engine is the single entry point for turning raw selections into
// Combinations, for batch enumeration, and for the Deviation Finder.
// It holds no mutable state and is safe for concurrent use.
//
// # Example
//
//	engine := options.NewEngine(schema, rules, deriver)
//	for _, combo := range engine.Combinations() {
//	    fmt.Println(combo.Stem, combo.Compatible)
//	}
type Engine struct {
	schema  *Schema
	compat  Compatibility
	deriver Deriver
	codec   Codec
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithCodec replaces DefaultCodec.
func WithCodec(c Codec) EngineOption {
	return func(e *Engine) { e.codec = c }
}

// NewEngine creates an Engine. A nil compat accepts everything; a nil deriver
// derives nothing.
func NewEngine(schema *Schema, compat Compatibility, deriver Deriver, opts ...EngineOption) *Engine {
	if schema == nil {
		panic("options: NewEngine requires a schema")
	}
	if compat == nil {
		compat = CompatibilityFunc(func(*Selection) bool { return false })
	}
	if deriver == nil {
		deriver = DeriveFunc(func(_ []string, sel *Selection) *Selection { return sel })
	}
	e := &Engine{schema: schema, compat: compat, deriver: deriver, codec: DefaultCodec}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the bound schema.
func (e *Engine) Schema() *Schema { return e.schema }

// Codec returns the stem codec.
func (e *Engine) Codec() Codec { return e.codec }

// Complete populates every row of sel in place and returns it.
//
// # Description
//
// Steps, in order:
//
//  1. disabled rows are fixed at their first option (overriding any input)
//  2. the Deriver fills hidden and auxiliary keys
//  3. hidden rows still absent fall back to their first option
//  4. every row must now be present; otherwise RequireFields panics
func (e *Engine) Complete(sel *Selection) *Selection {
	for _, row := range e.schema.rows {
		if row.Disabled {
			sel.Set(row.Name, row.Default())
		}
	}
	e.deriver.Derive(e.schema.OptionNames(), sel)
	for _, row := range e.schema.rows {
		if row.Hidden {
			sel.SetDefault(row.Name, row.Default())
		}
	}
	RequireFields(e.schema.names, sel)
	return sel
}

// Incompatible completes a clone of sel and evaluates the predicate.
func (e *Engine) Incompatible(sel *Selection) bool {
	return e.compat.Incompatible(e.Complete(sel.Clone()))
}

// Prepare completes a clone of sel, stems it and records the verdict.
func (e *Engine) Prepare(sel *Selection) Combination {
	full := e.Complete(sel.Clone())
	combo := Combination{
		Selection:  full,
		Stem:       e.codec.Encode(full, e.schema.visibleNames),
		Compatible: !e.compat.Incompatible(full),
	}
	if ex, ok := e.compat.(Explainer); ok && !combo.Compatible {
		combo.Violations = ex.Violations(full)
	}
	return combo
}

// Combinations enumerates and prepares every combination of the visible rows,
// in declaration order. Incompatible combinations are kept.
func (e *Engine) Combinations() []Combination {
	raw := Enumerate(e.schema.visibleNames, e.schema.visible)
	out := make([]Combination, len(raw))
	for i, sel := range raw {
		out[i] = e.Prepare(sel)
	}
	return out
}

// Lookup decodes a stem, maps each value back onto the schema's own option
// and prepares the result.
//
// Matching is by display form, so a decoded "2" still finds a string option
// "2" even though ParseValue coerced it to an int.
func (e *Engine) Lookup(stem string) (Combination, error) {
	sel, err := e.codec.Decode(stem)
	if err != nil {
		return Combination{}, err
	}
	canonical, err := e.schema.ParseSelection(sel.Strings())
	if err != nil {
		return Combination{}, fmt.Errorf("stem %q: %w", stem, err)
	}
	return e.Prepare(canonical), nil
}

// Stem encodes the visible fields of sel.
func (e *Engine) Stem(sel *Selection) string {
	return e.codec.Encode(sel, e.schema.visibleNames)
}
