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

// Compatibility decides whether a fully populated Selection is invalid.
//
// Implementations may read any field and may panic with a
// *MissingFieldError when a field is absent; callers complete the selection
// first.
type Compatibility interface {
	Incompatible(sel *Selection) bool
}

// Explainer is implemented by predicates that can name the rules that fired.
type Explainer interface {
	Violations(sel *Selection) []string
}

// CompatibilityFunc adapts a plain function to Compatibility.
type CompatibilityFunc func(sel *Selection) bool

// Incompatible calls f.
func (f CompatibilityFunc) Incompatible(sel *Selection) bool { return f(sel) }

// Rule is one independent domain incompatibility.
type Rule struct {
	// Name is a short identifier shown in INVALID messages and API responses.
	Name string

	// Description is a human sentence explaining the incompatibility.
	Description string

	// Check returns true when the selection violates the rule.
	Check func(sel *Selection) bool
}

// Rules aggregates independent checks: any check that fires makes the
// selection incompatible. Rules must not depend on each other's order.
type Rules []Rule

// Incompatible reports whether any rule fires.
func (r Rules) Incompatible(sel *Selection) bool {
	for _, rule := range r {
		if rule.Check(sel) {
			return true
		}
	}
	return false
}

// Violations returns the names of every rule that fires, in declaration order.
func (r Rules) Violations(sel *Selection) []string {
	var out []string
	for _, rule := range r {
		if rule.Check(sel) {
			out = append(out, rule.Name)
		}
	}
	return out
}

// Describe returns the description of the named rule, or "" if unknown.
func (r Rules) Describe(name string) string {
	for _, rule := range r {
		if rule.Name == name {
			return rule.Description
		}
	}
	return ""
}

var (
	_ Compatibility = Rules(nil)
	_ Explainer     = Rules(nil)
	_ Compatibility = CompatibilityFunc(nil)
)
