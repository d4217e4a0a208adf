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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolRow(name string) OptionRow {
	return OptionRow{Name: name, Options: []Value{Bool(false), Bool(true)}}
}

func strRow(name string, opts ...string) OptionRow {
	vs := make([]Value, len(opts))
	for i, o := range opts {
		vs[i] = String(o)
	}
	return OptionRow{Name: name, Options: vs}
}

func TestNewSchema_Views(t *testing.T) {
	hidden := boolRow("custom_gen")
	hidden.Hidden = true
	disabled := boolRow("fidelity")
	disabled.Disabled = true

	s, err := NewSchema(strRow("objective", "single", "multi"), hidden, disabled, boolRow("custom_threshold"))
	require.NoError(t, err)

	assert.Equal(t, []string{"objective", "custom_gen", "fidelity", "custom_threshold"}, s.Names())
	assert.Equal(t, []string{"objective", "custom_gen", "custom_threshold"}, s.OptionNames())
	assert.Equal(t, []string{"objective", "custom_threshold"}, s.VisibleNames())
	assert.Len(t, s.Visible(), 2)
	assert.Len(t, s.Rows(), 4)
}

func TestNewSchema_ViewsAreCopies(t *testing.T) {
	s := MustSchema(strRow("a", "x", "y"))
	names := s.VisibleNames()
	names[0] = "mutated"
	rows := s.Rows()
	rows[0].Options[0] = String("z")

	assert.Equal(t, []string{"a"}, s.VisibleNames())
	row, ok := s.Row("a")
	require.True(t, ok)
	assert.Equal(t, "x", row.Options[0].String())
}

func TestNewSchema_Rejects(t *testing.T) {
	tests := []struct {
		name string
		rows []OptionRow
	}{
		{"empty name", []OptionRow{strRow("", "x")}},
		{"no options", []OptionRow{{Name: "a"}}},
		{"duplicate", []OptionRow{strRow("a", "x"), strRow("a", "y")}},
		{"field sep in name", []OptionRow{strRow("a-b", "x")}},
		{"combo sep in name", []OptionRow{strRow("a+b", "x")}},
		{"combo sep in option", []OptionRow{strRow("a", "x+y")}},
		{"repeated option", []OptionRow{strRow("a", "x", "x")}},
		{"mixed kinds", []OptionRow{{Name: "a", Options: []Value{String("x"), Bool(true)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.rows...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestMustSchema_Panics(t *testing.T) {
	assert.Panics(t, func() { MustSchema(strRow("a")) })
}

func TestSchema_Validate(t *testing.T) {
	s := MustSchema(strRow("objective", "single", "multi"), boolRow("existing_data"))

	assert.NoError(t, s.Validate(SelectionOf(map[string]any{"objective": "multi", "existing_data": true})))
	assert.ErrorIs(t, s.Validate(SelectionOf(map[string]any{"objective": "triple"})), ErrInvalidValue)
	assert.ErrorIs(t, s.Validate(SelectionOf(map[string]any{"nope": true})), ErrUnknownOption)
	// a string "True" is not the boolean option
	assert.ErrorIs(t, s.Validate(SelectionOf(map[string]any{"existing_data": "True"})), ErrInvalidValue)
}

func TestSchema_ParseSelection(t *testing.T) {
	hidden := boolRow("custom_gen")
	hidden.Hidden = true
	s := MustSchema(strRow("objective", "single", "multi"), hidden, boolRow("existing_data"))

	sel, err := s.ParseSelection(map[string]string{"objective": "multi", "existing_data": "True"})
	require.NoError(t, err)
	assert.True(t, sel.Value("objective").Is("multi"))
	assert.True(t, sel.Value("existing_data").True())
	assert.False(t, sel.Has("custom_gen"))

	_, err = s.ParseSelection(map[string]string{"objective": "multi"})
	assert.ErrorIs(t, err, ErrMissingOption)

	_, err = s.ParseSelection(map[string]string{"objective": "multi", "existing_data": "yes"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = s.ParseSelection(map[string]string{"objective": "multi", "existing_data": "True", "x": "1"})
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestSchema_Defaults(t *testing.T) {
	s := MustSchema(strRow("objective", "single", "multi"), boolRow("existing_data"))
	assert.Equal(t, map[string]any{"objective": "single", "existing_data": false}, s.Defaults().Map())
}

func TestParseSchema(t *testing.T) {
	data := []byte(`
rows:
  - name: objective
    options: [single, multi]
    tooltip: Number of objectives.
  - name: custom_gen
    options: [false, true]
    hidden: true
  - name: fidelity
    options: [false, true]
    disabled: true
`)
	s, err := ParseSchema(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"objective"}, s.VisibleNames())

	row, ok := s.Row("custom_gen")
	require.True(t, ok)
	assert.Equal(t, KindBool, row.Kind())
	assert.True(t, row.Hidden)

	row, _ = s.Row("objective")
	assert.Equal(t, "Number of objectives.", row.Tooltip)
}

func TestParseSchema_Errors(t *testing.T) {
	_, err := ParseSchema([]byte(`rows: []`))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = ParseSchema([]byte(`rows: [{name: a, options: {x: 1}}]`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLoadSchema_RoundTrip(t *testing.T) {
	hidden := boolRow("custom_gen")
	hidden.Hidden = true
	s := MustSchema(strRow("objective", "single", "multi"), hidden)

	data, err := MarshalSchema(s)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	back, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, s.Names(), back.Names())
	assert.Equal(t, s.VisibleNames(), back.VisibleNames())
}

func TestLoadSchema_MissingFile(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
