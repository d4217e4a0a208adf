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

// Enumerate returns the Cartesian product of the rows' options.
//
// # Description
//
// Each combination is a Selection mapping names[i] to one option of rows[i].
// Order is deterministic: the last row varies fastest, exactly like nested
// loops written in declaration order.
//
//	Enumerate([]string{"color", "size"}, rows)
//	// color=red  size=small
//	// color=red  size=large
//	// color=blue size=small
//	// color=blue size=large
//
// Nothing is pruned here. Completion, derivation and compatibility are the
// caller's job (see Engine.Prepare) so invalid combinations stay inspectable.
//
// # Inputs
//
//   - names: one name per row, in the same order as rows
//   - rows: rows whose Options are multiplied
//
// # Limitations
//
//   - Panics if len(names) != len(rows); that is a caller bug.
//   - Zero rows yield a single empty combination.
func Enumerate(names []string, rows []OptionRow) []*Selection {
	if len(names) != len(rows) {
		panic(fmt.Sprintf("options: Enumerate got %d names for %d rows", len(names), len(rows)))
	}
	total := Count(rows)
	out := make([]*Selection, 0, total)
	if total == 0 {
		return out
	}

	idx := make([]int, len(rows))
	for {
		sel := NewSelection()
		for i, row := range rows {
			sel.Set(names[i], row.Options[idx[i]])
		}
		out = append(out, sel)

		// odometer: bump the last position, carry leftwards
		pos := len(rows) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(rows[pos].Options) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return out
		}
	}
}

// Count returns the number of combinations Enumerate would produce.
func Count(rows []OptionRow) int {
	n := 1
	for _, row := range rows {
		n *= len(row.Options)
	}
	return n
}
