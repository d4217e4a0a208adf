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

// ModelKwargs is the keyword-argument bundle passed to the surrogate model.
type ModelKwargs map[string]int

// AddModelSpecificKeys fills keys implied by the primary choices, in place.
//
// # Description
//
//   - custom_gen, when not already set, is true exactly for the fully Bayesian
//     model, since that model is only reachable through a custom strategy.
//   - model_kwargs is always replaced: {num_samples, warmup_steps} at 1024
//     for the fully Bayesian model, empty otherwise.
//
// Afterwards every name in names must be present; a missing one panics with
// *options.MissingFieldError.
//
// # Example
//
//	sel := options.SelectionOf(map[string]any{"objective": "single", "model": "Default"})
//	ax.AddModelSpecificKeys([]string{"objective", "model", "custom_gen"}, sel)
//	// custom_gen=False, model_kwargs={}
func AddModelSpecificKeys(names []string, sel *options.Selection) *options.Selection {
	fullyBayesian := sel.Value(ModelKey).Is(FullyBayesian)
	sel.SetDefault(CustomGenKey, options.Bool(fullyBayesian))

	kwargs := ModelKwargs{}
	if fullyBayesian {
		kwargs = ModelKwargs{numSamplesKw: NumSamples, warmupKw: WarmupSteps}
	}
	sel.SetExtra(ModelKwargsKey, kwargs)

	options.RequireFields(names, sel)
	return sel
}

// TestOverride shrinks the fully Bayesian sampling budget so a generated test
// finishes quickly. Selections without those kwargs are returned untouched.
//
// The kwargs bundle is replaced rather than edited so a clone sharing the
// original bundle keeps its production values.
func TestOverride(sel *options.Selection) *options.Selection {
	raw, ok := sel.Extra(ModelKwargsKey)
	if !ok {
		return sel
	}
	kwargs, ok := raw.(ModelKwargs)
	if !ok {
		return sel
	}
	_, hasSamples := kwargs[numSamplesKw]
	_, hasWarmup := kwargs[warmupKw]
	if !hasSamples || !hasWarmup {
		return sel
	}
	shrunk := make(ModelKwargs, len(kwargs))
	for k, v := range kwargs {
		shrunk[k] = v
	}
	shrunk[numSamplesKw] = TestSamples
	shrunk[warmupKw] = TestWarmup
	sel.SetExtra(ModelKwargsKey, shrunk)
	return sel
}
