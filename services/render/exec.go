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
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// =============================================================================
// Formatter
// =============================================================================

// Formatter rewrites source into canonical style.
type Formatter interface {
	Format(ctx context.Context, src string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(ctx context.Context, src string) (string, error)

// Format calls f.
func (f FormatterFunc) Format(ctx context.Context, src string) (string, error) { return f(ctx, src) }

// NopFormatter returns source unchanged.
var NopFormatter = FormatterFunc(func(_ context.Context, src string) (string, error) { return src, nil })

// CommandFormatter pipes source through an external formatter on stdin.
//
// The default is `black -q -`, which reads stdin and writes the formatted
// source to stdout.
type CommandFormatter struct {
	Command string
	Args    []string
}

// NewBlackFormatter returns a formatter running `black -q -`.
func NewBlackFormatter() *CommandFormatter {
	return &CommandFormatter{Command: "black", Args: []string{"-q", "-"}}
}

// Format runs the command. A non-zero exit becomes a *CommandError.
func (f *CommandFormatter) Format(ctx context.Context, src string) (string, error) {
	stdout, err := runCommand(ctx, strings.NewReader(src), "", f.Command, f.Args...)
	if err != nil {
		return "", err
	}
	return stdout, nil
}

// =============================================================================
// Process helper
// =============================================================================

// runCommand runs name with args, returning stdout. Failures, including a
// missing binary, come back as *CommandError with exit code -1 when the
// process never ran.
func runCommand(ctx context.Context, stdin io.Reader, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), NewCommandError(commandLine(name, args), exitCode(err), stderr.String(), err)
	}
	return stdout.String(), nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
