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
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the dynamic type held by a Value.
type Kind int

const (
	// KindString is a free-form string option such as "multi".
	KindString Kind = iota

	// KindBool is a True/False toggle.
	KindBool

	// KindInt only appears after decoding a stem with a digit-only value.
	KindInt

	// KindFloat only appears after decoding a stem with a decimal value.
	KindFloat
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a single option value.
//
// # Description
//
// Option rows are homogeneously typed (all booleans or all strings), but the
// stem decoder can also yield integers and floats. Value keeps the kind next
// to the payload so equality, formatting and template rendering stay exact.
//
// The zero Value is the empty string.
//
// # Formatting
//
// String() follows the formatting used in generated file names: booleans
// render as "True"/"False", floats always carry a decimal point.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
}

// String creates a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bool creates a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int creates an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float creates a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Of converts a native Go value into a Value.
//
// Supported inputs are string, bool, every signed integer type and float64.
// Anything else is formatted with %v and stored as a string.
func Of(x any) Value {
	switch v := x.(type) {
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case float64:
		return Float(v)
	case float32:
		return Float(float64(v))
	default:
		return String(fmt.Sprint(v))
	}
}

// Kind returns the dynamic type of the value.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string payload and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the integer payload and whether the value is an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload and whether the value is a float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// Is reports whether v is the string s. Booleans never match a string.
func (v Value) Is(s string) bool { return v.kind == KindString && v.s == s }

// True reports whether v is the boolean true.
func (v Value) True() bool { return v.kind == KindBool && v.b }

// Interface returns the native Go value (string, bool, int64 or float64).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.s
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	default:
		return v.s == o.s
	}
}

// String formats the value the way it appears in stems and UI labels.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	default:
		return v.s
	}
}

// GoString makes %#v output readable in test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("options.Value{%s:%q}", v.kind, v.String())
}

// ParseValue coerces a decoded string into a typed Value.
//
// # Description
//
// Applies the stem decoding rules in order:
//
//  1. "true"/"false" (any case) become booleans
//  2. non-empty ASCII digit strings become integers
//  3. digit strings containing exactly one '.' become floats
//  4. everything else stays a string
//
// # Limitations
//
//   - Lossy by construction: the string option "2" decodes as Int(2).
//   - Digit strings wider than int64 decode as Float and re-encode with a
//     trailing ".0" (e.g. "99999999999999999999" becomes
//     "100000000000000000000.0").
func ParseValue(s string) Value {
	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if isDigits(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	}
	if isDigits(strings.Replace(s, ".", "", 1)) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	}
	return String(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalJSON encodes the native value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts JSON booleans, numbers and strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("options: empty JSON value")
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	default:
		if bytes.ContainsAny(data, ".eE") {
			f, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return fmt.Errorf("options: invalid number %s: %w", data, err)
			}
			*v = Float(f)
			return nil
		}
		i, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("options: invalid number %s: %w", data, err)
		}
		*v = Int(i)
	}
	return nil
}

// MarshalYAML encodes the native value.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalYAML decodes a scalar node, keeping the YAML tag's type.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("options: line %d: option value must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return err
		}
		*v = Int(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = Float(f)
	default:
		*v = String(node.Value)
	}
	return nil
}
