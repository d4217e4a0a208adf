// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/honegumi/pkg/options"
)

// OptionTable renders visible rows as radio groups.
//
// # Description
//
// One line per row: the row name, then each option. The selected option is
// marked, and every option in devs is struck through, mirroring the web
// configurator's labels. Plain output uses "(x)" for the selection and
// "~~value~~" for deviations so it stays greppable.
//
// # Example
//
//	objective         (x) single   ( ) multi
//	custom_threshold  (x) False    ( ) ~~True~~
func (p *Printer) OptionTable(rows []options.OptionRow, current *options.Selection, devs *options.DeviationSet) string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row.Name))
	}

	var b strings.Builder
	for _, row := range rows {
		selected, _ := current.Get(row.Name)
		name := fmt.Sprintf("%-*s", width, row.Name)
		if !p.plain {
			name = Styles.Bold.Render(name)
		}
		b.WriteString(name)
		for _, option := range row.Options {
			b.WriteString("  ")
			b.WriteString(p.optionCell(row.Name, option, selected, devs))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *Printer) optionCell(name string, option, selected options.Value, devs *options.DeviationSet) string {
	label := option.String()
	isSelected := option.String() == selected.String()
	deviates := devs != nil && devs.ContainsLabel(name, label)

	if p.plain {
		mark := "( )"
		if isSelected {
			mark = "(x)"
		}
		if deviates {
			label = "~~" + label + "~~"
		}
		return mark + " " + label
	}

	icon := IconOption.Render()
	if isSelected {
		icon = IconSelected.Render()
	}
	switch {
	case deviates:
		label = Styles.Deviation.Render(label)
	case isSelected:
		label = Styles.Selected.Render(label)
	}
	return icon + " " + label
}

// PrintOptionTable writes OptionTable to the printer's destination.
func (p *Printer) PrintOptionTable(rows []options.OptionRow, current *options.Selection, devs *options.DeviationSet) {
	fmt.Fprint(p.w, p.OptionTable(rows, current, devs))
}
