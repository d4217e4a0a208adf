// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/pkg/options"
)

// parseSets builds a selection from name=value flags on top of the
// schema's defaults.
func parseSets(schema *options.Schema, sets []string) (*options.Selection, error) {
	raw := schema.Defaults().Strings()
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--set %q: want name=value", s)
		}
		raw[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return schema.ParseSelection(raw)
}

func runStemEncode(cmd *cobra.Command, a *app, sets []string) error {
	sel, err := parseSets(a.engine.Schema(), sets)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.engine.Stem(sel))
	return nil
}

func runStemDecode(cmd *cobra.Command, a *app, stem string) error {
	combo, err := a.engine.Lookup(stem)
	if err != nil {
		return err
	}
	printVerdict(a, combo)
	for _, name := range a.engine.Schema().OptionNames() {
		if v, ok := combo.Selection.Get(name); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, v)
		}
	}
	return nil
}

func printVerdict(a *app, combo options.Combination) {
	if combo.Compatible {
		a.out.Success(combo.Stem)
		return
	}
	a.out.Warning(combo.Stem + " is incompatible")
	for _, v := range combo.Violations {
		a.out.Info(v)
	}
}

func runDeviations(cmd *cobra.Command, a *app, sets []string) error {
	sel, err := parseSets(a.engine.Schema(), sets)
	if err != nil {
		return err
	}
	combo := a.engine.Prepare(sel)
	devs := a.engine.Deviations(sel)

	printVerdict(a, combo)
	a.out.PrintOptionTable(a.engine.Schema().Visible(), combo.Selection, devs)
	if devs.Len() == 0 {
		a.out.Info("no single change makes this selection invalid")
		return nil
	}
	a.out.Info(fmt.Sprintf("%d options would make this selection invalid: %s",
		devs.Len(), strings.Join(devs.Labels(), ", ")))
	return nil
}

type combosOptions struct {
	invalidOnly bool
	json        bool
}

// comboLine is one line of `combos --json`.
type comboLine struct {
	Stem       string            `json:"stem"`
	Compatible bool              `json:"compatible"`
	Violations []string          `json:"violations,omitempty"`
	Values     map[string]string `json:"values"`
}

func runCombos(cmd *cobra.Command, a *app, opts combosOptions) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	names := a.engine.Schema().VisibleNames()
	shown, invalid := 0, 0
	combos := a.engine.Combinations()
	for _, combo := range combos {
		if !combo.Compatible {
			invalid++
		}
		if opts.invalidOnly && combo.Compatible {
			continue
		}
		shown++
		if opts.json {
			line := comboLine{
				Stem:       combo.Stem,
				Compatible: combo.Compatible,
				Violations: combo.Violations,
				Values:     combo.Selection.Restrict(names).Strings(),
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
			continue
		}
		verdict := "ok"
		if !combo.Compatible {
			verdict = "INVALID"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", verdict, combo.Stem)
	}
	if !opts.json {
		a.out.Summary(len(combos)-invalid, invalid, 0, len(combos))
	}
	a.logger.Debug("listed combinations", "shown", shown, "invalid", invalid)
	return nil
}
