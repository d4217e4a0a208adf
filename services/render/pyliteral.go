// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/honegumi/pkg/options"
)

// PyLiteral formats v as Python source.
//
// # Description
//
// Booleans become True/False, nil becomes None, strings are double-quoted,
// maps become dicts with sorted keys and slices become lists. Anything else
// is rejected so a template never emits a Go-formatted value into Python.
//
// # Example
//
//	PyLiteral(ax.ModelKwargs{"num_samples": 16, "warmup_steps": 32})
//	// {"num_samples": 16, "warmup_steps": 32}
func PyLiteral(v any) (string, error) {
	if val, ok := v.(options.Value); ok {
		v = val.Interface()
	}
	if v == nil {
		return "None", nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return "True", nil
		}
		return "False", nil
	case reflect.String:
		return pyString(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return pyFloat(rv.Float()), nil
	case reflect.Map:
		return pyDict(rv)
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			s, err := PyLiteral(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return "", fmt.Errorf("no python literal for %T", v)
	}
}

func pyDict(rv reflect.Value) (string, error) {
	type kv struct{ k, v string }
	items := make([]kv, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := PyLiteral(iter.Key().Interface())
		if err != nil {
			return "", err
		}
		v, err := PyLiteral(iter.Value().Interface())
		if err != nil {
			return "", err
		}
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].k < items[j].k })

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.k + ": " + item.v
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// pyFloat keeps a decimal point so Python reads a float, not an int.
func pyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return `float("nan")`
	case math.IsInf(f, 1):
		return `float("inf")`
	case math.IsInf(f, -1):
		return `float("-inf")`
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
