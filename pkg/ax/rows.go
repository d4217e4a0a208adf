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

func toggle(name, tooltip string) options.OptionRow {
	return options.OptionRow{
		Name:    name,
		Options: []options.Value{options.Bool(false), options.Bool(true)},
		Tooltip: tooltip,
	}
}

func choice(name, tooltip string, opts ...string) options.OptionRow {
	vs := make([]options.Value, len(opts))
	for i, o := range opts {
		vs[i] = options.String(o)
	}
	return options.OptionRow{Name: name, Options: vs, Tooltip: tooltip}
}

// Rows returns the option rows in display order. The first option of each
// row is its default.
func Rows() []options.OptionRow {
	customGen := toggle(CustomGenKey,
		"Use a custom generation strategy instead of the one Ax picks automatically.")
	customGen.Hidden = true

	fidelity := toggle(FidelityKey,
		"Evaluate at several fidelities (e.g. simulation vs. experiment).")
	fidelity.Disabled = true

	task := toggle(TaskKey,
		"Share information across related optimization tasks.")
	task.Disabled = true

	featurize := toggle(FeaturizeKey,
		"Replace raw categorical or compositional inputs with learned features.")
	featurize.Disabled = true

	return []options.OptionRow{
		choice(ObjectiveKey,
			"Optimize a single objective, or trade off several objectives along a Pareto front.",
			ObjectiveSingle, ObjectiveMulti),
		choice(ModelKey,
			"Default uses a standard Gaussian process; Fully Bayesian samples the hyperparameters (slower, more robust with little data).",
			ModelDefault, FullyBayesian),
		customGen,
		toggle(ExistingDataKey,
			"Seed the experiment with measurements you already have."),
		toggle(SumConstraintKey,
			"Require the sum of some parameters to stay below a bound, e.g. x1 + x2 <= 15."),
		toggle(OrderConstraintKey,
			"Require one parameter to be no larger than another, e.g. x1 <= x2."),
		toggle(LinearConstraintKey,
			"Require a weighted sum of parameters to stay below a bound, e.g. 1.0*x1 + 0.5*x2 <= 15."),
		toggle(CompositionConstraintKey,
			"Parameters are fractions of a whole that must add up to a fixed total."),
		toggle(CategoricalKey,
			"Include an unordered categorical parameter such as a material choice."),
		toggle(CustomThresholdKey,
			"Set reference thresholds for each objective (multi-objective only)."),
		fidelity,
		task,
		featurize,
		choice(SynchronyKey,
			"Evaluate one candidate at a time, or a batch of candidates in parallel.",
			SynchronySingle, SynchronyBatch),
		toggle(VisualizeKey,
			"Plot the optimization trace or Pareto front when the run completes."),
	}
}

// Schema returns the validated schema for Rows.
func Schema() *options.Schema {
	return options.MustSchema(Rows()...)
}

// NewEngine binds Schema, Rules and AddModelSpecificKeys.
func NewEngine(opts ...options.EngineOption) *options.Engine {
	return NewEngineFor(Schema(), opts...)
}

// NewEngineFor binds the Ax rules and derivation to another schema, such as a
// shortlist loaded from a YAML file. The schema must declare every row the
// rules read: objective, model, custom_gen and custom_threshold.
func NewEngineFor(schema *options.Schema, opts ...options.EngineOption) *options.Engine {
	return options.NewEngine(schema, Rules, options.DeriveFunc(AddModelSpecificKeys), opts...)
}
