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
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InvalidMessage replaces the script of every incompatible combination.
const InvalidMessage = "INVALID: The parameters you have selected are incompatible, " +
	"either from not being implemented or being logically inconsistent."

// ScriptFileName returns "<stem>.py".
func ScriptFileName(stem string) string { return stem + ".py" }

// TestFileName returns "test_<stem>.py".
func TestFileName(stem string) string { return "test_" + stem + ".py" }

// NotebookFileName returns "<stem>.ipynb".
func NotebookFileName(stem string) string { return stem + ".ipynb" }

// WrapTest turns a script into a pytest test module.
//
// Every line, blank ones included, is indented four spaces under
// `def test_script():`, followed by a __main__ guard so the file also runs
// standalone.
func WrapTest(script string) string {
	lines := strings.Split(script, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return "def test_script():\n" + strings.Join(lines, "\n") +
		"\n\nif __name__ == '__main__':\n    test_script()"
}

// CreateAndClearDir creates dir if needed and removes the regular files in
// it. Subdirectories are left alone.
func CreateAndClearDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
	}
	return nil
}

func writeFile(dir, name, content string) (string, error) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}
