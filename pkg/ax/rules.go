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
	"github.com/AleutianAI/honegumi/pkg/options"
)

// Rules lists every Ax incompatibility. Append new rules here; each one reads
// a completed selection and must not rely on the others.
var Rules = options.Rules{
	{
		Name:        "fully_bayesian_requires_custom_gen",
		Description: "A fully Bayesian model is only reachable through a custom generation strategy.",
		Check: func(sel *options.Selection) bool {
			return sel.Value(ModelKey).Is(FullyBayesian) && !sel.Value(CustomGenKey).True()
		},
	},
	{
		Name:        "single_objective_forbids_custom_threshold",
		Description: "Objective thresholds only apply to multi-objective optimization.",
		Check: func(sel *options.Selection) bool {
			return sel.Value(ObjectiveKey).Is(ObjectiveSingle) && sel.Value(CustomThresholdKey).True()
		},
	},
}

// IsIncompatible reports whether any Ax rule fires for a completed selection.
func IsIncompatible(sel *options.Selection) bool {
	return Rules.Incompatible(sel)
}
