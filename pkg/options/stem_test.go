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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_MixedTypes(t *testing.T) {
	sel := SelectionOf(map[string]any{"option1": "value1", "option2": 2})
	assert.Equal(t, "option1-value1+option2-2", Encode(sel, []string{"option1", "option2"}))
}

func TestEncode_FollowsNameOrder(t *testing.T) {
	sel := SelectionOf(map[string]any{"a": true, "b": "x"})
	assert.Equal(t, "b-x+a-True", Encode(sel, []string{"b", "a"}))
}

func TestEncode_IgnoresUnlistedFields(t *testing.T) {
	sel := SelectionOf(map[string]any{"a": true, "hidden": false})
	assert.Equal(t, "a-True", Encode(sel, []string{"a"}))
}

func TestEncode_PanicsOnMissing(t *testing.T) {
	sel := SelectionOf(map[string]any{"a": true})
	assert.PanicsWithError(t,
		"selection is missing required fields [b] (present: [a])",
		func() { Encode(sel, []string{"a", "b"}) })
}

func TestDecode_Booleans(t *testing.T) {
	sel, err := Decode("option1-True+option2-False")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"option1": true, "option2": false}, sel.Map())
}

func TestDecode_CoercesNumbers(t *testing.T) {
	sel, err := Decode("n-12+f-0.5+s-Fully Bayesian")
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]any{"n": int64(12), "f": 0.5, "s": "Fully Bayesian"}, sel.Map()); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_ValueMayContainFieldSep(t *testing.T) {
	sel, err := Decode("range-0-10")
	require.NoError(t, err)
	assert.True(t, sel.Value("range").Is("0-10"))
}

func TestDecode_Malformed(t *testing.T) {
	for _, stem := range []string{"", "novalue", "a-1+", "-x"} {
		t.Run(stem, func(t *testing.T) {
			_, err := Decode(stem)
			assert.True(t, errors.Is(err, ErrMalformedStem), "err = %v", err)
		})
	}
}

func TestStem_RoundTripBoolAndString(t *testing.T) {
	names := []string{"objective", "model", "existing_data", "custom_threshold"}
	sel := SelectionOf(map[string]any{
		"objective":        "multi",
		"model":            "Fully Bayesian",
		"existing_data":    true,
		"custom_threshold": false,
		"custom_gen":       true,
	})

	back, err := Decode(Encode(sel, names))
	require.NoError(t, err)
	assert.True(t, back.Equal(sel.Restrict(names)), "round trip: %v vs %v", back.Map(), sel.Map())
}

func TestStem_NumericStringsDoNotRoundTrip(t *testing.T) {
	sel := SelectionOf(map[string]any{"batch": "2"})
	back, err := Decode(Encode(sel, []string{"batch"}))
	require.NoError(t, err)
	assert.Equal(t, KindInt, back.Value("batch").Kind())
	assert.False(t, back.Equal(sel))
}

func TestStem_WideIntegersBecomeFloats(t *testing.T) {
	sel, err := Decode("n-99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, sel.Value("n").Kind())
	assert.Equal(t, "n-100000000000000000000.0", Encode(sel, []string{"n"}))
}

func TestCodec_CustomSeparators(t *testing.T) {
	c := Codec{FieldSep: "=", ComboSep: "&"}
	sel := SelectionOf(map[string]any{"a": "x-y", "b": true})
	stem := c.Encode(sel, []string{"a", "b"})
	assert.Equal(t, "a=x-y&b=True", stem)

	back, err := c.Decode(stem)
	require.NoError(t, err)
	assert.True(t, back.Equal(sel))
}

func TestLookupKey(t *testing.T) {
	sel := SelectionOf(map[string]any{"objective": "single", "model": "Default", "existing_data": false})
	assert.Equal(t, "single,Default,False", LookupKey(sel, []string{"objective", "model", "existing_data"}))
}
