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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/pkg/ax"
	"github.com/AleutianAI/honegumi/services/lookup"
	"github.com/AleutianAI/honegumi/services/render"
	"github.com/AleutianAI/honegumi/services/site"
)

type generateOptions struct {
	skipTests bool
	smoke     bool
	noFormat  bool
	inMemory  bool
}

// runGenerate renders every combination, runs the generated tests and
// writes the configurator page.
func runGenerate(cmd *cobra.Command, a *app, opts generateOptions) error {
	var res *render.Result
	err := a.out.WithSpinner("generating "+a.cfg.Output.ScriptDir, func() error {
		var err error
		res, err = generate(cmd.Context(), a, opts)
		return err
	})
	if err != nil {
		return err
	}

	a.out.Summary(res.Compatible, res.Invalid(), res.Failed, res.Total)
	if res.Report != nil && res.Failed > 0 {
		a.out.Warning(fmt.Sprintf("%d generated tests failed; their combinations are marked invalid", res.Failed))
	}
	a.out.Success("wrote " + a.cfg.Output.SitePath())
	return nil
}

// generate is the body of one generation run, shared with watch.
func generate(ctx context.Context, a *app, opts generateOptions) (*render.Result, error) {
	renderer, err := a.renderer()
	if err != nil {
		return nil, err
	}
	assembler, err := a.assembler()
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(opts.inMemory)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("closing lookup store failed", "error", err)
		}
	}()

	cfg := render.Config{
		Engine:       a.engine,
		Renderer:     renderer,
		Store:        store,
		Formatter:    a.formatter(),
		Runner:       a.runner(),
		TestOverride: ax.TestOverride,
		Badges:       a.cfg.Badges.Render(a.cfg.Output),
		ScriptDir:    a.cfg.Output.ScriptDir,
		TestDir:      a.cfg.Output.TestDir,
		NotebookDir:  a.cfg.Output.NotebookDir,
		Smoke:        opts.smoke || a.cfg.Tests.Smoke,
		SkipTests:    opts.skipTests || a.cfg.Tests.Skip,
		Logger:       a.logger,
	}
	if opts.noFormat {
		cfg.Formatter = nil
	}
	if a.cfg.Tests.SyntaxCheck {
		cfg.Checker = render.NewSyntaxChecker()
	}

	pipeline, err := render.NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := lookup.Load(ctx, store)
	if err != nil {
		return nil, err
	}
	manifest, err := store.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	meta := site.Meta{
		Title:       a.cfg.Output.Title,
		RunID:       manifest.RunID,
		GeneratedAt: manifest.GeneratedAt,
	}
	if err := assembler.WriteFile(a.cfg.Output.SitePath(), a.engine.Schema(), tables, meta); err != nil {
		return nil, err
	}
	a.logger.Info("site written", "path", a.cfg.Output.SitePath(), "run_id", res.RunID)
	return res, nil
}
