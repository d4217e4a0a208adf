// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render turns option combinations into scripts, tests and notebooks.
//
// # Pipeline
//
// For every combination the Engine produces, in order:
//
//	incompatible → INVALID message, no files
//	compatible   → render → syntax check → format → write script
//	             → notebook + badges
//	             → render test variant (dummy, optional smoke override)
//	             → format → wrap in def test_script() → write test
//
// After the loop the generated tests run once, and each outcome is merged
// back into the lookup store by stem. Template and formatter failures abort
// the run; a failing generated test is recorded, not raised.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/honegumi/pkg/logging"
	"github.com/AleutianAI/honegumi/pkg/options"
	"github.com/AleutianAI/honegumi/services/lookup"
)

// Config wires a Pipeline.
type Config struct {
	Engine   *options.Engine `validate:"required"`
	Renderer *Renderer       `validate:"required"`
	Store    lookup.Store    `validate:"required"`

	// Formatter defaults to NopFormatter.
	Formatter Formatter

	// Checker, when set, rejects unparsable Python before formatting.
	Checker *SyntaxChecker

	// Runner runs the generated tests. Nil skips testing.
	Runner TestRunner

	// TestOverride adjusts the test variant when Smoke is set.
	TestOverride func(*options.Selection) *options.Selection

	Badges Badges

	ScriptDir string `validate:"required"`
	TestDir   string `validate:"required"`

	// NotebookDir, when empty, disables notebook output.
	NotebookDir string

	Smoke     bool
	SkipTests bool

	// RunID defaults to a random UUID.
	RunID string

	Logger *logging.Logger
	Now    func() time.Time
}

// Result summarizes a run.
type Result struct {
	RunID        string
	Total        int
	Compatible   int
	Incompatible int
	Failed       int
	Report       *Report
	Duration     time.Duration
}

// Invalid counts combinations unusable for either reason.
func (r *Result) Invalid() int { return r.Incompatible + r.Failed }

// Pipeline generates every artifact for one engine.
type Pipeline struct {
	cfg    Config
	logger *logging.Logger
}

// NewPipeline validates cfg and fills defaults.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if cfg.Formatter == nil {
		cfg.Formatter = NopFormatter
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{cfg: cfg, logger: logger.With("run_id", cfg.RunID)}, nil
}

// RunID returns the identifier logged and stored with this run.
func (p *Pipeline) RunID() string { return p.cfg.RunID }

// Run regenerates every artifact from scratch.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx, span := tracer.Start(ctx, "render.Pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", p.cfg.RunID))

	res, err := p.run(ctx)
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("generation failed", "error", err)
		return nil, err
	}
	runsTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.Int("combinations", res.Total),
		attribute.Int("compatible", res.Compatible),
		attribute.Int("failed", res.Failed),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	start := p.cfg.Now()
	for _, dir := range []string{p.cfg.ScriptDir, p.cfg.TestDir, p.cfg.NotebookDir} {
		if dir == "" {
			continue
		}
		if err := CreateAndClearDir(dir); err != nil {
			return nil, err
		}
	}
	if err := p.cfg.Store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}

	combos := p.cfg.Engine.Combinations()
	res := &Result{RunID: p.cfg.RunID, Total: len(combos)}
	p.logger.Info("generating", "combinations", len(combos), "smoke", p.cfg.Smoke)

	for _, combo := range combos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := p.process(ctx, combo)
		if err != nil {
			return nil, err
		}
		if err := p.cfg.Store.Put(ctx, entry); err != nil {
			return nil, fmt.Errorf("store %s: %w", combo.Stem, err)
		}
		if combo.Compatible {
			res.Compatible++
		} else {
			res.Incompatible++
		}
	}

	if err := p.cfg.Store.PutManifest(ctx, lookup.Manifest{
		RunID:       p.cfg.RunID,
		GeneratedAt: start.UTC(),
		Names:       p.cfg.Engine.Schema().VisibleNames(),
		Total:       res.Total,
		Compatible:  res.Compatible,
	}); err != nil {
		return nil, fmt.Errorf("store manifest: %w", err)
	}

	switch {
	case p.cfg.SkipTests:
		p.logger.Warn("tests skipped", "reason", "skip_tests")
	case p.cfg.Runner == nil:
		p.logger.Debug("no test runner configured")
	case res.Compatible == 0:
		p.logger.Warn("no compatible combinations to test")
	default:
		report, err := p.runTests(ctx)
		if err != nil {
			return nil, err
		}
		res.Report = report
		res.Failed = report.Failed
	}

	res.Duration = p.cfg.Now().Sub(start)
	p.logger.Info("generation complete",
		"combinations", res.Total,
		"compatible", res.Compatible,
		"incompatible", res.Incompatible,
		"failed", res.Failed,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// process renders one combination and writes its files.
func (p *Pipeline) process(ctx context.Context, combo options.Combination) (lookup.Entry, error) {
	names := p.cfg.Engine.Schema().VisibleNames()
	entry := lookup.Entry{
		Stem:       combo.Stem,
		LookupKey:  options.LookupKey(combo.Selection, names),
		Values:     make([]string, len(names)),
		Compatible: combo.Compatible,
		Violations: combo.Violations,
		Outcome:    lookup.OutcomeUntested,
	}
	for i, name := range names {
		entry.Values[i] = combo.Selection.Value(name).String()
	}

	if !combo.Compatible {
		combinationsTotal.WithLabelValues("incompatible").Inc()
		entry.Script = InvalidMessage
		p.logger.Debug("skipping incompatible combination", "stem", combo.Stem, "violations", combo.Violations)
		return entry, nil
	}
	combinationsTotal.WithLabelValues("compatible").Inc()

	script, err := p.source(ctx, combo.Stem, combo.Selection, false)
	if err != nil {
		return entry, err
	}
	if _, err := writeFile(p.cfg.ScriptDir, ScriptFileName(combo.Stem), script); err != nil {
		return entry, err
	}
	entry.Script = script

	if p.hasBadges() {
		entry.Preamble = p.cfg.Badges.Preamble(combo.Stem)
	}
	if p.cfg.NotebookDir != "" {
		if err := p.writeNotebook(combo.Stem, script); err != nil {
			return entry, err
		}
	}

	testSel := combo.Selection.Clone()
	if p.cfg.Smoke && p.cfg.TestOverride != nil {
		testSel = p.cfg.TestOverride(testSel)
	}
	testSrc, err := p.source(ctx, combo.Stem, testSel, true)
	if err != nil {
		return entry, err
	}
	if _, err := writeFile(p.cfg.TestDir, TestFileName(combo.Stem), WrapTest(testSrc)); err != nil {
		return entry, err
	}

	p.logger.Debug("rendered script", "stem", combo.Stem, "compatible", true)
	return entry, nil
}

// source renders, checks and formats one variant.
func (p *Pipeline) source(ctx context.Context, stem string, sel *options.Selection, dummy bool) (string, error) {
	t := time.Now()
	src, err := p.cfg.Renderer.Render(sel, dummy)
	stageDuration.WithLabelValues("template").Observe(time.Since(t).Seconds())
	if err != nil {
		return "", fmt.Errorf("render %s: %w", stem, err)
	}

	if p.cfg.Checker != nil {
		t = time.Now()
		err = p.cfg.Checker.Check(ctx, stem, src)
		stageDuration.WithLabelValues("syntax").Observe(time.Since(t).Seconds())
		if err != nil {
			return "", err
		}
	}

	t = time.Now()
	formatted, err := p.cfg.Formatter.Format(ctx, src)
	stageDuration.WithLabelValues("format").Observe(time.Since(t).Seconds())
	if err != nil {
		return "", fmt.Errorf("format %s: %w", stem, err)
	}
	return formatted, nil
}

func (p *Pipeline) hasBadges() bool {
	return p.cfg.Badges.ColabBase != "" || p.cfg.Badges.GitHubBase != ""
}

func (p *Pipeline) writeNotebook(stem, script string) error {
	t := time.Now()
	defer func() { stageDuration.WithLabelValues("notebook").Observe(time.Since(t).Seconds()) }()

	nb := ParsePercent(PercentScript(p.cfg.Badges.ColabBadge(stem), script))
	data, err := MarshalNotebook(nb)
	if err != nil {
		return fmt.Errorf("notebook %s: %w", stem, err)
	}
	_, err = writeFile(p.cfg.NotebookDir, NotebookFileName(stem), string(data))
	return err
}

// runTests runs the test directory once and merges outcomes by stem.
func (p *Pipeline) runTests(ctx context.Context) (*Report, error) {
	ctx, span := tracer.Start(ctx, "render.Pipeline.runTests")
	defer span.End()

	t := time.Now()
	report, err := p.cfg.Runner.Run(ctx, p.cfg.TestDir)
	stageDuration.WithLabelValues("test").Observe(time.Since(t).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("run tests: %w", err)
	}

	for stem, outcome := range report.Outcomes() {
		testOutcomesTotal.WithLabelValues(string(outcome)).Inc()
		if err := p.cfg.Store.SetOutcome(ctx, stem, storeOutcome(outcome)); err != nil {
			p.logger.Warn("test outcome for unknown stem", "stem", stem, "error", err)
		}
	}
	p.logger.Info("tests complete",
		"collected", report.Collected,
		"passed", report.Passed,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"xfailed", report.XFailed,
		"duration_ms", report.TotalDuration.Milliseconds(),
	)
	return report, nil
}

func storeOutcome(o TestOutcome) lookup.Outcome {
	switch o {
	case TestPassed:
		return lookup.OutcomePassed
	case TestFailed:
		return lookup.OutcomeFailed
	default:
		return lookup.OutcomeSkipped
	}
}
