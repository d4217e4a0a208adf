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
	"errors"
	"fmt"
	"strings"
)

// ErrTemplate wraps template parse and execution failures.
var ErrTemplate = errors.New("template error")

// CommandError wraps an external tool failure with stderr context.
//
// # Description
//
// Returned by the formatter and the test runner. Carries the command line,
// exit code, and trimmed stderr. Supports unwrapping.
//
// # Example
//
//	err := NewCommandError("black -q -", 123, "cannot parse", originalErr)
//	fmt.Println(err.Error()) // "black -q - (exit 123): cannot parse"
//
//	var cmdErr *CommandError
//	if errors.As(err, &cmdErr) {
//	    fmt.Println(cmdErr.Stderr) // "cannot parse"
//	}
type CommandError struct {
	// Command is the command that was executed.
	Command string

	// ExitCode is the process exit code (-1 if unknown).
	ExitCode int

	// Stderr contains the standard error output.
	Stderr string

	// Wrapped is the underlying error.
	Wrapped error
}

// Error returns a formatted error message.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// NewCommandError creates a CommandError. Stderr is trimmed.
func NewCommandError(cmd string, exitCode int, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Wrapped:  wrapped,
	}
}

// SyntaxIssue is one ERROR or MISSING node found by the parser.
type SyntaxIssue struct {
	Line    int
	Column  int
	Message string
}

// SyntaxError reports rendered Python that does not parse.
type SyntaxError struct {
	Stem   string
	Issues []SyntaxIssue
}

// Error summarizes the first issue.
func (e *SyntaxError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("syntax error in %s", e.Stem)
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("syntax error in %s at line %d, col %d: %s", e.Stem, first.Line, first.Column, first.Message)
	if len(e.Issues) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Issues)-1)
	}
	return msg
}
