// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the honegumi CLI.
package ux

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Selected  lipgloss.Style
	Deviation lipgloss.Style
	Box       lipgloss.Style
	ErrorBox  lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Selected:  lipgloss.NewStyle().Bold(true).Foreground(ColorTealPrimary),
	Deviation: lipgloss.NewStyle().Strikethrough(true).Foreground(ColorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess  Icon = "✓"
	IconWarning  Icon = "⚠"
	IconError    Icon = "✗"
	IconSelected Icon = "●"
	IconOption   Icon = "○"
	IconBullet   Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconSelected:
		return Styles.Selected.Render(string(i))
	case IconOption:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// Printer
// =============================================================================

// Printer writes styled output to a terminal and plain, parseable output
// everywhere else.
type Printer struct {
	w     io.Writer
	plain bool
}

// NewPrinter styles output only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, plain: !IsTerminal(w)}
}

// NewPlainPrinter never styles output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, plain: true}
}

// Plain reports whether styling is disabled.
func (p *Printer) Plain() bool { return p.plain }

// Writer returns the destination.
func (p *Printer) Writer() io.Writer { return p.w }

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Title prints a heading.
func (p *Printer) Title(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "== %s ==\n", text)
		return
	}
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational line.
func (p *Printer) Info(text string) {
	if p.plain {
		fmt.Fprintln(p.w, text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Box prints content under a title in a rounded box.
func (p *Printer) Box(title, content string) {
	if p.plain {
		fmt.Fprintf(p.w, "%s:\n%s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, Styles.Box.Render(Styles.Title.Render(title)+"\n"+content))
}

// ErrorBox prints content in an error-styled box.
func (p *Printer) ErrorBox(title, content string) {
	if p.plain {
		fmt.Fprintf(p.w, "ERROR %s:\n%s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, Styles.ErrorBox.Render(Styles.Error.Bold(true).Render(title)+"\n"+content))
}

// Summary prints batch counts.
func (p *Printer) Summary(compatible, invalid, failed, total int) {
	if p.plain {
		fmt.Fprintf(p.w, "SUMMARY: compatible=%d invalid=%d failed=%d total=%d\n", compatible, invalid, failed, total)
		return
	}
	fmt.Fprintf(p.w, "\n%s %s  %s %s  %s %s  %s %s\n",
		Styles.Success.Render(fmt.Sprint(compatible)), Styles.Muted.Render("compatible"),
		Styles.Warning.Render(fmt.Sprint(invalid)), Styles.Muted.Render("invalid"),
		Styles.Error.Render(fmt.Sprint(failed)), Styles.Muted.Render("failed"),
		Styles.Bold.Render(fmt.Sprint(total)), Styles.Muted.Render("total"),
	)
}
