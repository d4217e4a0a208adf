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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/AleutianAI/honegumi/pkg/options"
)

// DefaultDummyKey is the template key that selects the short test run.
const DefaultDummyKey = "dummy"

// FuncMap returns the functions available to script templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"py": PyLiteral,
	}
}

// Renderer executes one script template against selections.
//
// Missing keys are an error, never an empty string: a template that
// references a key the selection lacks fails the whole batch.
type Renderer struct {
	tmpl     *template.Template
	dummyKey string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithDummyKey overrides the key carrying the dummy flag.
func WithDummyKey(key string) RendererOption {
	return func(r *Renderer) { r.dummyKey = key }
}

// NewRenderer parses text as a template called name.
func NewRenderer(name, text string, opts ...RendererOption) (*Renderer, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(FuncMap()).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrTemplate, name, err)
	}
	r := &Renderer{tmpl: tmpl, dummyKey: DefaultDummyKey}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// LoadRenderer reads and parses a template file.
func LoadRenderer(path string, opts ...RendererOption) (*Renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTemplate, path, err)
	}
	return NewRenderer(filepath.Base(path), string(data), opts...)
}

// Name returns the template name.
func (r *Renderer) Name() string { return r.tmpl.Name() }

// Render executes the template with the selection's values and extras plus
// the dummy flag.
func (r *Renderer) Render(sel *options.Selection, dummy bool) (string, error) {
	data := sel.TemplateData()
	data[r.dummyKey] = dummy

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute %s: %w", ErrTemplate, r.tmpl.Name(), err)
	}
	return buf.String(), nil
}
