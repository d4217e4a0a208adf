// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/honegumi/pkg/options"
)

// =============================================================================
// Schema
// =============================================================================

func TestSchema_Views(t *testing.T) {
	s := Schema()
	assert.Equal(t, []string{
		ObjectiveKey, ModelKey, ExistingDataKey, SumConstraintKey, OrderConstraintKey,
		LinearConstraintKey, CompositionConstraintKey, CategoricalKey, CustomThresholdKey,
		SynchronyKey, VisualizeKey,
	}, s.VisibleNames())
	assert.Contains(t, s.OptionNames(), CustomGenKey)
	assert.NotContains(t, s.OptionNames(), FidelityKey)
	assert.Len(t, s.Names(), 15)
}

func TestRows_HaveTooltips(t *testing.T) {
	for _, row := range Rows() {
		assert.NotEmpty(t, row.Tooltip, row.Name)
	}
}

// =============================================================================
// Rules
// =============================================================================

func shortlist(t *testing.T) *options.Engine {
	t.Helper()
	keep := map[string]bool{
		ObjectiveKey: true, ModelKey: true, CustomGenKey: true,
		ExistingDataKey: true, CustomThresholdKey: true,
	}
	var rows []options.OptionRow
	for _, row := range Rows() {
		if keep[row.Name] {
			rows = append(rows, row)
		}
	}
	schema, err := options.NewSchema(rows...)
	require.NoError(t, err)
	return NewEngineFor(schema)
}

func TestIsIncompatible_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		sel  map[string]any
		want bool
	}{
		{"fully bayesian without custom gen", map[string]any{
			ObjectiveKey: "single", ModelKey: FullyBayesian, CustomGenKey: false, CustomThresholdKey: false,
		}, true},
		{"single objective with threshold", map[string]any{
			ObjectiveKey: "single", ModelKey: ModelDefault, CustomGenKey: false, CustomThresholdKey: true,
		}, true},
		{"multi objective with threshold", map[string]any{
			ObjectiveKey: "multi", ModelKey: ModelDefault, CustomGenKey: false, CustomThresholdKey: true,
		}, false},
		{"fully bayesian with custom gen", map[string]any{
			ObjectiveKey: "multi", ModelKey: FullyBayesian, CustomGenKey: true, CustomThresholdKey: false,
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIncompatible(options.SelectionOf(tt.sel)))
		})
	}
}

func TestIsIncompatible_MissingFieldPanics(t *testing.T) {
	assert.Panics(t, func() {
		IsIncompatible(options.SelectionOf(map[string]any{ObjectiveKey: "single"}))
	})
}

func TestRules_HoldForEveryCombination(t *testing.T) {
	e := NewEngine()
	combos := e.Combinations()
	require.Len(t, combos, 2048)

	compatible := 0
	for _, combo := range combos {
		sel := combo.Selection
		fb := sel.Value(ModelKey).Is(FullyBayesian)
		// derivation always enables custom_gen for the fully Bayesian model
		assert.Equal(t, fb, sel.Value(CustomGenKey).True(), combo.Stem)
		wantIncompatible := sel.Value(ObjectiveKey).Is(ObjectiveSingle) && sel.Value(CustomThresholdKey).True()
		assert.Equal(t, !wantIncompatible, combo.Compatible, combo.Stem)
		if combo.Compatible {
			compatible++
		}
	}
	assert.Equal(t, 1536, compatible)
}

// =============================================================================
// Derivation
// =============================================================================

func TestAddModelSpecificKeys(t *testing.T) {
	names := []string{ObjectiveKey, ModelKey, CustomGenKey}

	sel := options.SelectionOf(map[string]any{ObjectiveKey: "single", ModelKey: ModelDefault})
	AddModelSpecificKeys(names, sel)
	assert.False(t, sel.Value(CustomGenKey).True())
	kw, _ := sel.Extra(ModelKwargsKey)
	assert.Equal(t, ModelKwargs{}, kw)

	sel = options.SelectionOf(map[string]any{ObjectiveKey: "single", ModelKey: FullyBayesian})
	AddModelSpecificKeys(names, sel)
	assert.True(t, sel.Value(CustomGenKey).True())
	kw, _ = sel.Extra(ModelKwargsKey)
	assert.Equal(t, ModelKwargs{"num_samples": 1024, "warmup_steps": 1024}, kw)
}

func TestAddModelSpecificKeys_KeepsExplicitCustomGen(t *testing.T) {
	sel := options.SelectionOf(map[string]any{ModelKey: FullyBayesian, CustomGenKey: false})
	AddModelSpecificKeys([]string{ModelKey, CustomGenKey}, sel)
	assert.False(t, sel.Value(CustomGenKey).True())
}

func TestAddModelSpecificKeys_PanicsOnMissing(t *testing.T) {
	sel := options.SelectionOf(map[string]any{ModelKey: ModelDefault})
	assert.Panics(t, func() { AddModelSpecificKeys([]string{ModelKey, ObjectiveKey}, sel) })
}

func TestTestOverride(t *testing.T) {
	sel := options.SelectionOf(map[string]any{ModelKey: FullyBayesian})
	AddModelSpecificKeys([]string{ModelKey}, sel)

	test := TestOverride(sel.Clone())
	kw, _ := test.Extra(ModelKwargsKey)
	assert.Equal(t, ModelKwargs{"num_samples": 16, "warmup_steps": 32}, kw)

	// the production selection keeps its budget
	kw, _ = sel.Extra(ModelKwargsKey)
	assert.Equal(t, ModelKwargs{"num_samples": 1024, "warmup_steps": 1024}, kw)
}

func TestTestOverride_NoKwargs(t *testing.T) {
	sel := options.SelectionOf(map[string]any{ModelKey: ModelDefault})
	assert.Same(t, sel, TestOverride(sel))
	_, ok := sel.Extra(ModelKwargsKey)
	assert.False(t, ok)

	AddModelSpecificKeys([]string{ModelKey}, sel)
	TestOverride(sel)
	kw, _ := sel.Extra(ModelKwargsKey)
	assert.Equal(t, ModelKwargs{}, kw)
}

// =============================================================================
// Deviation Finder on the shortlist
// =============================================================================

func TestDeviations_Shortlist(t *testing.T) {
	e := shortlist(t)
	current := options.SelectionOf(map[string]any{
		ObjectiveKey: "single", ModelKey: ModelDefault, CustomGenKey: false,
		ExistingDataKey: false, CustomThresholdKey: false,
	})
	devs := e.Deviations(current)
	assert.Equal(t, []string{"custom_threshold-True"}, devs.Labels())
}

func TestDeviations_InvalidCurrent(t *testing.T) {
	e := shortlist(t)
	current := options.SelectionOf(map[string]any{
		ObjectiveKey: "single", ModelKey: ModelDefault,
		ExistingDataKey: false, CustomThresholdKey: true,
	})
	labels := e.Deviations(current).Labels()
	for _, want := range []string{"objective-single", "model-Default", "existing_data-False", "custom_threshold-True"} {
		assert.Contains(t, labels, want)
	}
}

// =============================================================================
// Template
// =============================================================================

func TestScriptTemplate_Embedded(t *testing.T) {
	src := ScriptTemplate()
	assert.True(t, strings.HasPrefix(src, "{{- $multi"))
	for _, key := range []string{ObjectiveKey, ExistingDataKey, CustomThresholdKey, SynchronyKey, VisualizeKey, DummyKey, ModelKwargsKey} {
		assert.Contains(t, src, "."+key, key)
	}
}
