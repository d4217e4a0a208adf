// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package configurator

// ========== REQUEST/RESPONSE STRUCTURES ==========

// SchemaRow is one visible radio group.
type SchemaRow struct {
	Name    string   `json:"name"`
	Tooltip string   `json:"tooltip,omitempty"`
	Options []string `json:"options"`
}

// SchemaResponse is returned by GET /v1/schema.
type SchemaResponse struct {
	Names []string    `json:"names"`
	Rows  []SchemaRow `json:"rows"`
}

// DeviationRequest is the body of POST /v1/deviations. Values use the
// display form of each option ("True", "single").
type DeviationRequest struct {
	Selection map[string]string `json:"selection" binding:"required,min=1"`
}

// DeviationView is one flagged substitution in display form.
type DeviationView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DeviationResponse is returned by POST /v1/deviations.
type DeviationResponse struct {
	Stem       string          `json:"stem"`
	Compatible bool            `json:"compatible"`
	Violations []string        `json:"violations"`
	Deviations []DeviationView `json:"deviations"`

	// Script is the generated script for the selection, when the store has it.
	Script string `json:"script,omitempty"`
}

// InvalidResponse is returned by GET /v1/invalid.
type InvalidResponse struct {
	Names   []string   `json:"names"`
	Configs [][]string `json:"configs"`
	Stems   []string   `json:"stems"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
