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
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/services/render"
)

var errNotTerminal = errors.New("configure needs an interactive terminal; use `honegumi deviations --set name=value` instead")

// runConfigure is the terminal version of the page: one select per visible
// row, then the rendered script or the INVALID message, then the option
// table with deviations struck through.
func runConfigure(cmd *cobra.Command, a *app) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return &exitError{code: 2, err: errNotTerminal}
	}
	renderer, err := a.renderer()
	if err != nil {
		return err
	}

	schema := a.engine.Schema()
	choices := schema.Defaults().Strings()
	for {
		rows := schema.Visible()
		values := make([]string, len(rows))
		fields := make([]huh.Field, len(rows))
		for i, row := range rows {
			values[i] = choices[row.Name]
			fields[i] = huh.NewSelect[string]().
				Title(row.Name).
				Description(row.Tooltip).
				Options(huh.NewOptions(row.OptionStrings()...)...).
				Value(&values[i])
		}
		if err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(cmd.Context()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		for i, row := range rows {
			choices[row.Name] = values[i]
		}

		sel, err := schema.ParseSelection(choices)
		if err != nil {
			return err
		}
		combo := a.engine.Prepare(sel)
		if combo.Compatible {
			script, err := renderer.Render(combo.Selection, false)
			if err != nil {
				return err
			}
			a.out.Box(combo.Stem, script)
		} else {
			a.out.ErrorBox(combo.Stem, render.InvalidMessage)
			for _, v := range combo.Violations {
				a.out.Info(v)
			}
		}
		a.out.PrintOptionTable(rows, combo.Selection, a.engine.Deviations(sel))
		a.logger.Debug("configured", "stem", combo.Stem, "compatible", combo.Compatible)

		again := true
		confirm := huh.NewConfirm().Title("Change options?").Affirmative("Yes").Negative("Done").Value(&again)
		if err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(cmd.Context()); err != nil || !again {
			return nil
		}
	}
}
