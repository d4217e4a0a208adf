// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ax describes the Ax Platform option matrix: which Bayesian
// optimization features a generated script can combine, which pairs of
// features cannot coexist, and which keys are implied by others.
//
// # Usage
//
//	engine := ax.NewEngine()
//	for _, combo := range engine.Combinations() {
//	    if !combo.Compatible {
//	        continue
//	    }
//	    // render combo.Selection with ax.ScriptTemplate
//	}
//
// The package is pure data plus three functions (Rules, AddModelSpecificKeys,
// TestOverride); rendering lives in services/render.
package ax

// =============================================================================
// Option keys
// =============================================================================

const (
	ObjectiveKey             = "objective"
	ModelKey                 = "model"
	CustomGenKey             = "custom_gen"
	ExistingDataKey          = "existing_data"
	SumConstraintKey         = "sum_constraint"
	OrderConstraintKey       = "order_constraint"
	LinearConstraintKey      = "linear_constraint"
	CompositionConstraintKey = "composition_constraint"
	CategoricalKey           = "categorical"
	CustomThresholdKey       = "custom_threshold"
	FidelityKey              = "fidelity"
	TaskKey                  = "task"
	FeaturizeKey             = "featurize"
	SynchronyKey             = "synchrony"
	VisualizeKey             = "visualize"
)

// Derived keys. They never appear in a stem.
const (
	// DummyKey switches the template to a short, cheap run.
	DummyKey = "dummy"

	// ModelKwargsKey holds the surrogate model keyword arguments.
	ModelKwargsKey = "model_kwargs"
)

// Option values referenced by rules and derivation.
const (
	ObjectiveSingle = "single"
	ObjectiveMulti  = "multi"
	ModelDefault    = "Default"
	FullyBayesian   = "Fully Bayesian"
	SynchronySingle = "single"
	SynchronyBatch  = "batch"
)

// Production sampling parameters for fully Bayesian models, raised from the
// Ax tutorial defaults for robustness.
const (
	NumSamples   = 1024
	WarmupSteps  = 1024
	TestSamples  = 16
	TestWarmup   = 32
	numSamplesKw = "num_samples"
	warmupKw     = "warmup_steps"
)
