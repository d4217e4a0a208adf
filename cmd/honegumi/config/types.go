// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"path/filepath"
	"strings"

	"github.com/AleutianAI/honegumi/services/render"
)

// CurrentConfigVersion is written by `honegumi config init`. Files with any
// v1.x.y version are accepted.
const CurrentConfigVersion = "v1.0.0"

// DefaultFileName is looked up in the working directory when --config is not given.
const DefaultFileName = "honegumi.yaml"

// Config is the honegumi.yaml file.
type Config struct {
	Version string `yaml:"version" validate:"required"`

	// Schema optionally replaces the built-in Ax rows with a YAML schema.
	Schema string `yaml:"schema,omitempty"`

	Output    OutputConfig    `yaml:"output"`
	Templates TemplatesConfig `yaml:"templates"`
	Formatter FormatterConfig `yaml:"formatter"`
	Tests     TestsConfig     `yaml:"tests"`
	Badges    BadgesConfig    `yaml:"badges"`
	Logging   LoggingConfig   `yaml:"logging"`
	Serve     ServeConfig     `yaml:"serve"`
	Store     StoreConfig     `yaml:"store"`
	Publish   PublishConfig   `yaml:"publish"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// OutputConfig names the generated directories.
type OutputConfig struct {
	ScriptDir string `yaml:"script_dir" validate:"required"`
	TestDir   string `yaml:"test_dir" validate:"required"`

	// NotebookDir empty disables notebooks.
	NotebookDir string `yaml:"notebook_dir"`

	DocDir   string `yaml:"doc_dir" validate:"required"`
	SiteName string `yaml:"site_name" validate:"required"`
	Title    string `yaml:"title"`
}

// SitePath is the full path of the assembled page.
func (o OutputConfig) SitePath() string {
	return filepath.Join(o.DocDir, o.SiteName)
}

// TemplatesConfig points at template files. Empty paths use the bundled ones.
type TemplatesConfig struct {
	Script string `yaml:"script"`
	Site   string `yaml:"site"`
}

// FormatterConfig selects the code formatter.
type FormatterConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command" validate:"required_if=Enabled true"`
	Args    []string `yaml:"args"`
}

// TestsConfig controls the generated test run.
type TestsConfig struct {
	// Skip bypasses the test runner. Env: HONEGUMI_SKIP_TESTS.
	Skip bool `yaml:"skip"`

	// Smoke shrinks expensive parameters in generated tests.
	// Env: HONEGUMI_SMOKE_TEST, or the legacy SMOKE_TEST.
	Smoke bool `yaml:"smoke"`

	Command string   `yaml:"command" validate:"required_unless=Skip true"`
	Args    []string `yaml:"args"`

	// SyntaxCheck parses rendered Python before formatting.
	SyntaxCheck bool `yaml:"syntax_check"`
}

// BadgesConfig builds Colab and GitHub links for each script.
type BadgesConfig struct {
	Enabled bool `yaml:"enabled"`

	// Repo is "owner/name" on GitHub.
	Repo   string `yaml:"repo" validate:"required_if=Enabled true"`
	Branch string `yaml:"branch"`
}

// Render converts the config to link builders for the given output dirs.
// A disabled config yields zero Badges, which render no preamble.
func (b BadgesConfig) Render(out OutputConfig) render.Badges {
	if !b.Enabled {
		return render.Badges{}
	}
	branch := b.Branch
	if branch == "" {
		branch = "main"
	}
	repo := strings.Trim(b.Repo, "/")
	return render.Badges{
		GitHubBase:  "https://github.com/" + repo + "/tree/" + branch + "/",
		ColabBase:   "https://colab.research.google.com/github/" + repo + "/blob/" + branch + "/",
		NotebookDir: filepath.ToSlash(out.NotebookDir),
		ScriptDir:   filepath.ToSlash(out.ScriptDir),
	}
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// ServeConfig configures `honegumi serve`.
type ServeConfig struct {
	Addr          string  `yaml:"addr" validate:"required"`
	RatePerSecond float64 `yaml:"rate_per_second" validate:"gte=0"`
	Burst         int     `yaml:"burst" validate:"gte=0"`
}

// StoreConfig locates the lookup store shared by generate and serve.
type StoreConfig struct {
	Path     string `yaml:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `yaml:"in_memory"`
}

// PublishConfig is the upload destination.
type PublishConfig struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// TelemetryConfig selects OpenTelemetry exporters. Empty means off.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"omitempty,oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
}

// DefaultConfig returns the configuration used when no file exists. Paths are
// relative to the working directory.
func DefaultConfig() Config {
	return Config{
		Version: CurrentConfigVersion,
		Output: OutputConfig{
			ScriptDir:   filepath.Join("docs", "generated_scripts", "ax"),
			TestDir:     filepath.Join("tests", "generated_scripts", "ax"),
			NotebookDir: filepath.Join("docs", "generated_notebooks", "ax"),
			DocDir:      "docs",
			SiteName:    "honegumi.html",
			Title:       "Honegumi",
		},
		Formatter: FormatterConfig{
			Enabled: true,
			Command: "black",
			Args:    []string{"-q", "-"},
		},
		Tests: TestsConfig{
			Command:     "pytest",
			Args:        []string{"-q", "--import-mode=importlib", "--continue-on-collection-errors", "-o", "junit_family=xunit1"},
			SyntaxCheck: true,
		},
		Badges: BadgesConfig{
			Enabled: true,
			Repo:    "sgbaird/honegumi",
			Branch:  "main",
		},
		Logging: LoggingConfig{Level: "info"},
		Serve: ServeConfig{
			Addr:          "127.0.0.1:8080",
			RatePerSecond: 20,
			Burst:         40,
		},
		Store: StoreConfig{Path: filepath.Join(".honegumi", "lookup")},
		Publish: PublishConfig{
			Prefix: "honegumi",
		},
	}
}
