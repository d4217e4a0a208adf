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
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Option Rows
// =============================================================================

// OptionRow is one configurable dimension of the schema.
//
// # Description
//
// Options are ordered; the first option is the implicit default for hidden
// rows and the fixed value for disabled rows. All options in a row share one
// Kind. Tooltip is presentation-only.
//
// # Visibility
//
//	hidden:   not enumerated, not shown; value derived or defaulted
//	disabled: not enumerated, not shown; always fixed at Options[0]
type OptionRow struct {
	Name     string  `yaml:"name" json:"name" validate:"required,excludesall=+-"`
	Options  []Value `yaml:"options" json:"options" validate:"required,min=1"`
	Hidden   bool    `yaml:"hidden,omitempty" json:"hidden"`
	Disabled bool    `yaml:"disabled,omitempty" json:"disabled"`
	Tooltip  string  `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
}

// Default returns the first declared option.
func (r OptionRow) Default() Value { return r.Options[0] }

// Visible reports whether the row is enumerated and shown to users.
func (r OptionRow) Visible() bool { return !r.Hidden && !r.Disabled }

// Kind returns the shared kind of the row's options.
func (r OptionRow) Kind() Kind { return r.Options[0].Kind() }

// Contains reports whether v is one of the declared options.
func (r OptionRow) Contains(v Value) bool {
	for _, o := range r.Options {
		if o.Equal(v) {
			return true
		}
	}
	return false
}

// Lookup finds the option whose display form equals s.
func (r OptionRow) Lookup(s string) (Value, bool) {
	for _, o := range r.Options {
		if o.String() == s {
			return o, true
		}
	}
	return Value{}, false
}

// OptionStrings returns the display form of every option.
func (r OptionRow) OptionStrings() []string {
	out := make([]string, len(r.Options))
	for i, o := range r.Options {
		out[i] = o.String()
	}
	return out
}

// =============================================================================
// Schema
// =============================================================================

var rowValidate = validator.New(validator.WithRequiredStructEnabled())

// Schema is the immutable, process-wide option schema.
//
// # Description
//
// NewSchema validates the rows once and precomputes three read-only views:
//
//   - Rows: every row, in declaration order
//   - OptionNames: every row that is not disabled
//   - Visible: rows that are neither hidden nor disabled (enumerated, shown, stemmed)
//
// Accessors return copies; the canonical list is never mutated.
type Schema struct {
	rows         []OptionRow
	index        map[string]int
	names        []string
	optionNames  []string
	visible      []OptionRow
	visibleNames []string
}

// NewSchema validates rows and builds a Schema.
//
// # Inputs
//
//   - rows: option rows in declaration order
//
// # Outputs
//
//   - *Schema: the validated schema
//   - error: wraps ErrInvalidSchema when a row is empty, a name is duplicated
//     or contains a stem separator, options mix kinds or repeat, or a string
//     option contains the combo separator
func NewSchema(rows ...OptionRow) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(rows))}
	for i, row := range rows {
		if err := rowValidate.Struct(row); err != nil {
			return nil, fmt.Errorf("%w: row %d (%q): %v", ErrInvalidSchema, i, row.Name, err)
		}
		if _, dup := s.index[row.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate option name %q", ErrInvalidSchema, row.Name)
		}
		if err := checkOptions(row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		row.Options = append([]Value(nil), row.Options...)
		s.index[row.Name] = i
		s.rows = append(s.rows, row)
		s.names = append(s.names, row.Name)
		if !row.Disabled {
			s.optionNames = append(s.optionNames, row.Name)
		}
		if row.Visible() {
			s.visible = append(s.visible, row)
			s.visibleNames = append(s.visibleNames, row.Name)
		}
	}
	return s, nil
}

// MustSchema is NewSchema for package-level schema literals. It panics on error.
func MustSchema(rows ...OptionRow) *Schema {
	s, err := NewSchema(rows...)
	if err != nil {
		panic(err)
	}
	return s
}

func checkOptions(row OptionRow) error {
	kind := row.Options[0].Kind()
	seen := make(map[string]bool, len(row.Options))
	for _, o := range row.Options {
		if o.Kind() != kind {
			return fmt.Errorf("row %q mixes %s and %s options", row.Name, kind, o.Kind())
		}
		str := o.String()
		if seen[str] {
			return fmt.Errorf("row %q repeats option %q", row.Name, str)
		}
		seen[str] = true
		if strings.Contains(str, DefaultCodec.ComboSep) {
			return fmt.Errorf("row %q option %q contains %q", row.Name, str, DefaultCodec.ComboSep)
		}
	}
	return nil
}

// Rows returns every row in declaration order.
func (s *Schema) Rows() []OptionRow { return cloneRows(s.rows) }

// Row returns the row named name.
func (s *Schema) Row(name string) (OptionRow, bool) {
	i, ok := s.index[name]
	if !ok {
		return OptionRow{}, false
	}
	row := s.rows[i]
	row.Options = append([]Value(nil), row.Options...)
	return row, true
}

func cloneRows(rows []OptionRow) []OptionRow {
	out := make([]OptionRow, len(rows))
	for i, row := range rows {
		row.Options = append([]Value(nil), row.Options...)
		out[i] = row
	}
	return out
}

// Names returns every row name, including disabled ones.
func (s *Schema) Names() []string { return append([]string(nil), s.names...) }

// OptionNames returns the names of rows that are not disabled.
func (s *Schema) OptionNames() []string { return append([]string(nil), s.optionNames...) }

// Visible returns rows that are neither hidden nor disabled.
func (s *Schema) Visible() []OptionRow { return cloneRows(s.visible) }

// VisibleNames returns the names of the visible rows.
func (s *Schema) VisibleNames() []string { return append([]string(nil), s.visibleNames...) }

// Validate checks that every option value in sel belongs to the schema.
//
// Unknown names wrap ErrUnknownOption; values outside the row's options wrap
// ErrInvalidValue. Missing rows are not reported here (see CheckFields).
func (s *Schema) Validate(sel *Selection) error {
	for _, name := range sel.Names() {
		row, ok := s.Row(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
		v := sel.Value(name)
		if !row.Contains(v) {
			return fmt.Errorf("%w: %s=%q (allowed: %s)", ErrInvalidValue, name, v.String(),
				strings.Join(row.OptionStrings(), ", "))
		}
	}
	return nil
}

// ParseSelection converts display strings (radio values, CLI flags) into a
// typed Selection.
//
// # Description
//
// Every visible row must be supplied. Hidden and disabled rows may be
// supplied but are usually left for the engine to complete.
//
// # Outputs
//
//   - error: wraps ErrUnknownOption, ErrInvalidValue or ErrMissingOption
func (s *Schema) ParseSelection(raw map[string]string) (*Selection, error) {
	sel := NewSelection()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row, ok := s.Row(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
		v, ok := row.Lookup(raw[name])
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q (allowed: %s)", ErrInvalidValue, name, raw[name],
				strings.Join(row.OptionStrings(), ", "))
		}
		sel.Set(name, v)
	}
	for _, name := range s.visibleNames {
		if !sel.Has(name) {
			return nil, fmt.Errorf("%w: %q", ErrMissingOption, name)
		}
	}
	return sel, nil
}

// Defaults returns a Selection with every visible row at its first option.
func (s *Schema) Defaults() *Selection {
	sel := NewSelection()
	for _, row := range s.visible {
		sel.Set(row.Name, row.Default())
	}
	return sel
}
