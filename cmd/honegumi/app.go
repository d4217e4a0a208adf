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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/cmd/honegumi/config"
	"github.com/AleutianAI/honegumi/pkg/ax"
	"github.com/AleutianAI/honegumi/pkg/logging"
	"github.com/AleutianAI/honegumi/pkg/options"
	"github.com/AleutianAI/honegumi/pkg/telemetry"
	"github.com/AleutianAI/honegumi/pkg/ux"
	"github.com/AleutianAI/honegumi/services/lookup"
	"github.com/AleutianAI/honegumi/services/render"
	"github.com/AleutianAI/honegumi/services/site"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	schemaPath string
	logLevel   string
	jsonLogs   bool
	trace      bool
}

// app is the per-invocation state built in PersistentPreRunE.
type app struct {
	cfg      config.Config
	logger   *logging.Logger
	engine   *options.Engine
	out      *ux.Printer
	shutdown func(context.Context) error
}

func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.schemaPath != "" {
		cfg.Schema = flags.schemaPath
	}

	levelName := cfg.Logging.Level
	if flags.logLevel != "" {
		levelName = flags.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "honegumi",
		JSON:    flags.jsonLogs || cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})

	tcfg := telemetry.Config{
		ServiceName:    "honegumi",
		ServiceVersion: version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   true,
		Output:         cmd.ErrOrStderr(),
	}
	if flags.trace {
		tcfg.TraceExporter = telemetry.ExporterStdout
	}
	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		logger.Close()
		return nil, err
	}

	engine, err := buildEngine(cfg.Schema)
	if err != nil {
		_ = shutdown(context.Background())
		logger.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		out:      ux.NewPrinter(cmd.OutOrStdout()),
		shutdown: shutdown,
	}, nil
}

// close flushes telemetry and log files.
func (a *app) close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}
	_ = a.logger.Close()
}

// axRuleRows are read by the Ax rules and derivation, so a custom schema
// must declare them.
var axRuleRows = []string{ax.ObjectiveKey, ax.ModelKey, ax.CustomGenKey, ax.CustomThresholdKey}

// buildEngine binds the Ax rules to the built-in rows, or to a YAML schema.
func buildEngine(schemaPath string) (*options.Engine, error) {
	if schemaPath == "" {
		return ax.NewEngine(), nil
	}
	schema, err := options.LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	for _, name := range axRuleRows {
		if _, ok := schema.Row(name); !ok {
			return nil, fmt.Errorf("%w: %s has no %q row, which the Ax rules read", options.ErrInvalidSchema, schemaPath, name)
		}
	}
	return ax.NewEngineFor(schema), nil
}

func (a *app) renderer() (*render.Renderer, error) {
	if a.cfg.Templates.Script != "" {
		return render.LoadRenderer(a.cfg.Templates.Script, render.WithDummyKey(ax.DummyKey))
	}
	return render.NewRenderer(ax.ScriptTemplateName, ax.ScriptTemplate(), render.WithDummyKey(ax.DummyKey))
}

func (a *app) assembler() (*site.Assembler, error) {
	if a.cfg.Templates.Site == "" {
		return site.NewAssembler()
	}
	text, err := os.ReadFile(a.cfg.Templates.Site)
	if err != nil {
		return nil, fmt.Errorf("read site template: %w", err)
	}
	return site.ParseAssembler(filepath.Base(a.cfg.Templates.Site), string(text))
}

// openStore opens the configured lookup store. inMemory forces a
// process-local store regardless of config.
func (a *app) openStore(inMemory bool) (lookup.Store, error) {
	if inMemory || a.cfg.Store.InMemory {
		return lookup.NewMemoryStore(), nil
	}
	return lookup.OpenBadger(lookup.BadgerConfig{
		Path:   a.cfg.Store.Path,
		Logger: a.logger.Slog(),
	})
}

// formatter returns the configured formatter, or nil for none.
func (a *app) formatter() render.Formatter {
	if !a.cfg.Formatter.Enabled {
		return nil
	}
	return &render.CommandFormatter{Command: a.cfg.Formatter.Command, Args: a.cfg.Formatter.Args}
}

// runner returns the configured test runner, or nil when tests are skipped.
func (a *app) runner() render.TestRunner {
	if a.cfg.Tests.Skip {
		return nil
	}
	return &render.PytestRunner{Command: a.cfg.Tests.Command, Args: a.cfg.Tests.Args}
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
