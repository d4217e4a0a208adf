// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// =============================================================================
// Badges
// =============================================================================

const (
	colabBadgeImage  = "https://colab.research.google.com/assets/colab-badge.svg"
	githubBadgeImage = "https://img.shields.io/badge/Open%20in%20GitHub-blue?logo=github&labelColor=grey"
)

// Badges builds the "Open in Colab" and "Open in GitHub" links shown above
// each script.
type Badges struct {
	// GitHubBase is the tree URL of the repository, e.g.
	// https://github.com/sgbaird/honegumi/tree/main/
	GitHubBase string

	// ColabBase is the Colab URL of the repository, e.g.
	// https://colab.research.google.com/github/sgbaird/honegumi/blob/main/
	ColabBase string

	// NotebookDir is the repository-relative notebook directory.
	NotebookDir string

	// ScriptDir is the repository-relative script directory.
	ScriptDir string
}

// EscapeName percent-encodes a file name for a URL path. Spaces become %20
// and plus signs become %2B so Colab does not read them as spaces.
func EscapeName(name string) string {
	return strings.ReplaceAll(url.PathEscape(name), "+", "%2B")
}

// ColabLink returns the Colab URL of the stem's notebook.
func (b Badges) ColabLink(stem string) string {
	return joinURL(b.ColabBase, b.NotebookDir, EscapeName(stem+".ipynb"))
}

// GitHubLink returns the repository URL of the stem's script.
func (b Badges) GitHubLink(stem string) string {
	return joinURL(b.GitHubBase, b.ScriptDir, EscapeName(stem+".py"))
}

// ColabBadge returns the Colab badge anchor.
func (b Badges) ColabBadge(stem string) string {
	return fmt.Sprintf(`<a href="%s"><img alt="Open In Colab" src="%s"></a>`, b.ColabLink(stem), colabBadgeImage)
}

// GitHubBadge returns the GitHub badge anchor.
func (b Badges) GitHubBadge(stem string) string {
	return fmt.Sprintf(`<a href="%s"><img alt="Open in GitHub" src="%s"></a>`, b.GitHubLink(stem), githubBadgeImage)
}

// Preamble returns both badges separated by a space.
func (b Badges) Preamble(stem string) string {
	return b.ColabBadge(stem) + " " + b.GitHubBadge(stem)
}

func joinURL(base string, parts ...string) string {
	base = strings.TrimSuffix(base, "/")
	rel := path.Join(parts...)
	if rel == "" || rel == "." {
		return base
	}
	return base + "/" + strings.TrimPrefix(rel, "/")
}

// =============================================================================
// Notebooks
// =============================================================================

// PipInstall is the install cell prepended to every notebook.
const PipInstall = "%pip install ax-platform"

// PercentScript wraps a script in py:percent cells: the badge as markdown,
// the install command, then the script itself.
func PercentScript(badge, script string) string {
	return fmt.Sprintf("# %%%% [markdown]\n%s\n\n# %%%%\n%s\n\n# %%%%\n%s", badge, PipInstall, script)
}

// Cell is one nbformat-4 cell.
type Cell struct {
	CellType       string         `json:"cell_type"`
	ExecutionCount *int           `json:"execution_count,omitempty"`
	ID             string         `json:"id"`
	Metadata       map[string]any `json:"metadata"`
	Outputs        []any          `json:"outputs,omitempty"`
	Source         []string       `json:"source"`
}

// Notebook is the nbformat-4 document.
type Notebook struct {
	Cells         []Cell         `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// ParsePercent splits py:percent text into notebook cells.
//
// # Description
//
// A line starting with "# %%" opens a cell; "[markdown]" on that line makes
// it a markdown cell, whose "# " comment prefixes are stripped. Text before
// the first marker becomes a code cell. Leading and trailing blank lines of
// each cell are dropped, and empty cells are skipped.
func ParsePercent(text string) Notebook {
	nb := Notebook{
		Cells: []Cell{},
		Metadata: map[string]any{
			"kernelspec": map[string]any{
				"display_name": "Python 3",
				"language":     "python",
				"name":         "python3",
			},
			"language_info": map[string]any{"name": "python"},
		},
		NBFormat:      4,
		NBFormatMinor: 5,
	}

	cellType := "code"
	var lines []string
	flush := func() {
		if cell, ok := newCell(cellType, lines, len(nb.Cells)); ok {
			nb.Cells = append(nb.Cells, cell)
		}
		lines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "# %%") {
			flush()
			cellType = "code"
			if strings.Contains(line, "[markdown]") {
				cellType = "markdown"
			}
			continue
		}
		if cellType == "markdown" {
			line = strings.TrimPrefix(strings.TrimPrefix(line, "#"), " ")
		}
		lines = append(lines, line)
	}
	flush()
	return nb
}

func newCell(cellType string, lines []string, index int) (Cell, bool) {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return Cell{}, false
	}

	source := make([]string, len(lines))
	for i, line := range lines {
		if i < len(lines)-1 {
			line += "\n"
		}
		source[i] = line
	}
	cell := Cell{
		CellType: cellType,
		ID:       fmt.Sprintf("cell-%d", index),
		Metadata: map[string]any{},
		Source:   source,
	}
	if cellType == "code" {
		cell.Outputs = []any{}
	}
	return cell, true
}

// MarshalNotebook encodes nb the way Jupyter writes files: one-space indent
// and a trailing newline.
//
// Code cells always carry "execution_count": null and "outputs": [].
func MarshalNotebook(nb Notebook) ([]byte, error) {
	type codeCell struct {
		CellType       string         `json:"cell_type"`
		ExecutionCount *int           `json:"execution_count"`
		ID             string         `json:"id"`
		Metadata       map[string]any `json:"metadata"`
		Outputs        []any          `json:"outputs"`
		Source         []string       `json:"source"`
	}
	type markdownCell struct {
		CellType string         `json:"cell_type"`
		ID       string         `json:"id"`
		Metadata map[string]any `json:"metadata"`
		Source   []string       `json:"source"`
	}

	cells := make([]any, len(nb.Cells))
	for i, c := range nb.Cells {
		if c.CellType == "code" {
			outputs := c.Outputs
			if outputs == nil {
				outputs = []any{}
			}
			cells[i] = codeCell{c.CellType, c.ExecutionCount, c.ID, c.Metadata, outputs, c.Source}
		} else {
			cells[i] = markdownCell{c.CellType, c.ID, c.Metadata, c.Source}
		}
	}

	doc := struct {
		Cells         []any          `json:"cells"`
		Metadata      map[string]any `json:"metadata"`
		NBFormat      int            `json:"nbformat"`
		NBFormatMinor int            `json:"nbformat_minor"`
	}{cells, nb.Metadata, nb.NBFormat, nb.NBFormatMinor}

	data, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return append(data, '\n'), nil
}
