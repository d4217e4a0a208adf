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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvSmokeTest       = "HONEGUMI_SMOKE_TEST"
	EnvSmokeTestLegacy = "SMOKE_TEST"
	EnvSkipTests       = "HONEGUMI_SKIP_TESTS"
)

// ErrConfigExists is returned by CreateDefault when the file is present.
var ErrConfigExists = errors.New("config file already exists")

// Load reads path on top of DefaultConfig, applies environment overrides
// and validates the result.
//
// A missing file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the version and the struct tags.
func Validate(cfg Config) error {
	if !semver.IsValid(cfg.Version) {
		return fmt.Errorf("config version %q is not a semantic version (want %s)", cfg.Version, CurrentConfigVersion)
	}
	if got, want := semver.Major(cfg.Version), semver.Major(CurrentConfigVersion); got != want {
		return fmt.Errorf("config version %s is not supported (want %s.x.y)", cfg.Version, want)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyEnv overrides test settings from the environment. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSmokeTest); ok && v != "" {
		smoke, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvSmokeTest, v, err)
		}
		cfg.Tests.Smoke = smoke
	} else if v, ok := lookup(EnvSmokeTestLegacy); ok && v != "" {
		// Any value other than an explicit false turns smoke mode on.
		smoke, err := strconv.ParseBool(v)
		cfg.Tests.Smoke = err != nil || smoke
	}

	if v, ok := lookup(EnvSkipTests); ok && v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvSkipTests, v, err)
		}
		cfg.Tests.Skip = skip
	}
	return nil
}

// CreateDefault writes DefaultConfig to path, creating parent directories.
// An existing file is left alone unless force is set.
func CreateDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as YAML with a short header.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var b strings.Builder
	b.WriteString("# honegumi configuration. Paths are relative to the working directory.\n")
	b.Write(data)
	return []byte(b.String()), nil
}
