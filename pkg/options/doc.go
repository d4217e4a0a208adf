// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package options implements the option-combination engine.
//
// A Schema declares the configurable dimensions (OptionRow). The engine
// enumerates the Cartesian product of the visible rows, completes every
// combination with disabled and hidden values, derives dependent keys,
// classifies the result with a compatibility predicate, and names it with a
// Stem. For interactive use the Deviation Finder performs a one-hop search
// around a single Selection.
//
// # Data Flow
//
//	Schema ──► Enumerate ──► Engine.Prepare ──► Combination{Selection, Stem, Compatible}
//	                          │
//	                          ├─ disabled rows fixed at their first option
//	                          ├─ Deriver (hidden + auxiliary keys)
//	                          ├─ hidden rows default to their first option
//	                          └─ Compatibility (any rule fires ⇒ incompatible)
//
// # Stems
//
// A Stem encodes the visible fields of a Selection in declaration order:
//
//	objective-single+model-Default+existing_data-False
//
// Decoding coerces "true"/"false", digit strings and decimal strings back
// to typed values. A string option whose legitimate value looks like a
// number therefore cannot round-trip.
//
// # Thread Safety
//
// Schema and Engine are immutable after construction and safe for concurrent
// use. A Selection is not safe for concurrent mutation; clone it per goroutine.
package options
