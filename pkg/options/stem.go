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
	"fmt"
	"strings"
)

const (
	// DefaultFieldSep separates a name from its value.
	DefaultFieldSep = "-"

	// DefaultComboSep separates name/value pairs.
	DefaultComboSep = "+"
)

// DefaultCodec uses "-" between name and value and "+" between pairs.
var DefaultCodec = Codec{FieldSep: DefaultFieldSep, ComboSep: DefaultComboSep}

// Codec maps a Selection to and from its Stem.
//
// # Description
//
// A Stem is the lookup key and file-name stem of a combination:
//
//	name1<FieldSep>value1<ComboSep>name2<FieldSep>value2
//
// Names never contain either separator (enforced by NewSchema). Values may
// contain FieldSep because decoding splits on its first occurrence, but must
// not contain ComboSep.
type Codec struct {
	FieldSep string
	ComboSep string
}

// Encode renders the named fields of sel in the given order.
//
// Panics with a *MissingFieldError if a name is absent.
//
// # Example
//
//	options.Encode(options.SelectionOf(map[string]any{"option1": "value1", "option2": 2}),
//	    []string{"option1", "option2"})
//	// "option1-value1+option2-2"
func (c Codec) Encode(sel *Selection, names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + c.FieldSep + sel.Value(name).String()
	}
	return strings.Join(parts, c.ComboSep)
}

// Decode parses a stem back into a Selection, coercing values with ParseValue.
//
// # Outputs
//
//   - *Selection: decoded values; a repeated name keeps its last value
//   - error: wraps ErrMalformedStem when the stem is empty or a pair has no FieldSep
func (c Codec) Decode(stem string) (*Selection, error) {
	if stem == "" {
		return nil, fmt.Errorf("%w: empty stem", ErrMalformedStem)
	}
	sel := NewSelection()
	for _, pair := range strings.Split(stem, c.ComboSep) {
		name, raw, ok := strings.Cut(pair, c.FieldSep)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: pair %q has no %q", ErrMalformedStem, pair, c.FieldSep)
		}
		sel.Set(name, ParseValue(raw))
	}
	return sel, nil
}

// Encode uses DefaultCodec.
func Encode(sel *Selection, names []string) string { return DefaultCodec.Encode(sel, names) }

// Decode uses DefaultCodec.
func Decode(stem string) (*Selection, error) { return DefaultCodec.Decode(stem) }

// LookupKey joins the display form of the named values with commas.
//
// This is the radio-state key used by the generated page, e.g. "single,Default,False".
func LookupKey(sel *Selection, names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = sel.Value(name).String()
	}
	return strings.Join(parts, ",")
}
