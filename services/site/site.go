// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package site assembles the single-page configurator.
//
// The page embeds the visible option rows, the stem-keyed lookup tables and
// the invalid configurations as JSON, and a small script that swaps in the
// script for the checked radios and strikes through every option whose
// selection would produce an invalid configuration.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/honegumi/pkg/options"
	"github.com/AleutianAI/honegumi/services/lookup"
	"github.com/AleutianAI/honegumi/services/render"
)

// PageTemplateName is the file name of the bundled page template.
const PageTemplateName = "page.html.tmpl"

//go:embed templates/*.tmpl
var templates embed.FS

// Row is one radio group, with options in display form.
type Row struct {
	Name    string   `json:"name"`
	Tooltip string   `json:"tooltip,omitempty"`
	Options []string `json:"options"`
}

// Meta describes the run behind the page.
type Meta struct {
	Title       string
	RunID       string
	GeneratedAt time.Time
}

// data is embedded as JSON for the page script.
type data struct {
	Names          []string          `json:"names"`
	Rows           []Row             `json:"rows"`
	Scripts        map[string]string `json:"scripts"`
	Preambles      map[string]string `json:"preambles"`
	Stems          map[string]string `json:"stems"`
	InvalidConfigs [][]string        `json:"invalid_configs"`
	InvalidStems   []string          `json:"invalid_stems"`
	InvalidMessage string            `json:"invalid_message"`
}

type page struct {
	Title       string
	RunID       string
	GeneratedAt string
	Rows        []Row
	Data        data
}

// Assembler renders the page.
type Assembler struct {
	tmpl *template.Template
}

// NewAssembler uses the bundled page template.
func NewAssembler() (*Assembler, error) {
	text, err := templates.ReadFile("templates/" + PageTemplateName)
	if err != nil {
		return nil, fmt.Errorf("read page template: %w", err)
	}
	return ParseAssembler(PageTemplateName, string(text))
}

// ParseAssembler uses a caller-supplied page template.
func ParseAssembler(name, text string) (*Assembler, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", render.ErrTemplate, name, err)
	}
	return &Assembler{tmpl: tmpl}, nil
}

// Rows converts the schema's visible rows to display form.
func Rows(schema *options.Schema) []Row {
	visible := schema.Visible()
	out := make([]Row, len(visible))
	for i, row := range visible {
		out[i] = Row{Name: row.Name, Tooltip: row.Tooltip, Options: row.OptionStrings()}
	}
	return out
}

// Render writes the page to w.
func (a *Assembler) Render(w io.Writer, schema *options.Schema, tables lookup.Tables, meta Meta) error {
	rows := Rows(schema)
	title := meta.Title
	if title == "" {
		title = "Honegumi"
	}
	generated := ""
	if !meta.GeneratedAt.IsZero() {
		generated = meta.GeneratedAt.UTC().Format(time.RFC3339)
	}

	p := page{
		Title:       title,
		RunID:       meta.RunID,
		GeneratedAt: generated,
		Rows:        rows,
		Data: data{
			Names:          schema.VisibleNames(),
			Rows:           rows,
			Scripts:        tables.Scripts,
			Preambles:      tables.Preambles,
			Stems:          tables.Stems,
			InvalidConfigs: tables.InvalidConfigs,
			InvalidStems:   tables.InvalidStems,
			InvalidMessage: render.InvalidMessage,
		},
	}
	if err := a.tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("%w: execute %s: %w", render.ErrTemplate, a.tmpl.Name(), err)
	}
	return nil
}

// WriteFile renders the page to path, creating parent directories. The file
// is only replaced once rendering succeeds.
func (a *Assembler) WriteFile(path string, schema *options.Schema, tables lookup.Tables, meta Meta) error {
	var buf bytes.Buffer
	if err := a.Render(&buf, schema, tables, meta); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
