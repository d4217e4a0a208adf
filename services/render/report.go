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
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestOutcome is the result of one generated test.
type TestOutcome string

const (
	TestPassed  TestOutcome = "passed"
	TestFailed  TestOutcome = "failed"
	TestSkipped TestOutcome = "skipped"
	TestXFailed TestOutcome = "xfailed"
)

// TestCase is one test result.
type TestCase struct {
	Name     string
	File     string
	Stem     string
	Outcome  TestOutcome
	Duration time.Duration
	Output   string
}

// Report summarizes one test run.
type Report struct {
	Cases         []TestCase
	Collected     int
	Passed        int
	Failed        int
	Skipped       int
	XFailed       int
	TotalDuration time.Duration
	ExitCode      int
}

// Outcomes maps stem to outcome.
func (r *Report) Outcomes() map[string]TestOutcome {
	out := make(map[string]TestOutcome, len(r.Cases))
	for _, c := range r.Cases {
		if c.Stem != "" {
			out[c.Stem] = c.Outcome
		}
	}
	return out
}

// TestRunner runs the generated tests in a directory.
type TestRunner interface {
	Run(ctx context.Context, dir string) (*Report, error)
}

// =============================================================================
// pytest
// =============================================================================

// PytestRunner runs pytest and reads its JUnit XML report.
//
// Exit codes 0 (all passed) and 1 (some failed) both yield a report; failures
// are data. Any other exit code (interrupted, internal error, usage error,
// nothing collected) is returned as a *CommandError.
type PytestRunner struct {
	Command string
	Args    []string
}

// NewPytestRunner returns a runner for `pytest`. Generated file names hold
// '+' and spaces, so modules are imported by path. A module that fails to
// import is reported as an error case instead of stopping the run.
func NewPytestRunner() *PytestRunner {
	return &PytestRunner{
		Command: "pytest",
		Args:    []string{"-q", "--import-mode=importlib", "--continue-on-collection-errors", "-o", "junit_family=xunit1"},
	}
}

// Run executes the tests under dir.
func (r *PytestRunner) Run(ctx context.Context, dir string) (*Report, error) {
	tmp, err := os.MkdirTemp("", "honegumi-junit-")
	if err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	defer os.RemoveAll(tmp)
	reportPath := filepath.Join(tmp, "report.xml")

	args := append(append([]string{}, r.Args...), "--junitxml="+reportPath, dir)
	start := time.Now()
	_, runErr := runCommand(ctx, nil, "", r.Command, args...)
	elapsed := time.Since(start)

	exit := 0
	if runErr != nil {
		var cmdErr *CommandError
		if !errors.As(runErr, &cmdErr) || cmdErr.ExitCode != 1 {
			return nil, runErr
		}
		exit = 1
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("read junit report: %w", err)
	}
	report, err := ParseJUnit(data)
	if err != nil {
		return nil, err
	}
	report.ExitCode = exit
	if report.TotalDuration == 0 {
		report.TotalDuration = elapsed
	}
	return report, nil
}

// =============================================================================
// JUnit XML
// =============================================================================

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Time  float64     `xml:"time,attr"`
	Cases []junitCase `xml:"testcase"`
}

type junitCase struct {
	ClassName string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	File      string        `xml:"file,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure"`
	Error     *junitMessage `xml:"error"`
	Skipped   *junitMessage `xml:"skipped"`
	SystemOut string        `xml:"system-out"`
	SystemErr string        `xml:"system-err"`
}

type junitMessage struct {
	Type    string `xml:"type,attr"`
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// ParseJUnit reads a pytest JUnit XML report. Both a <testsuites> root and a
// bare <testsuite> root are accepted.
func ParseJUnit(data []byte) (*Report, error) {
	var suites junitSuites
	if err := xml.Unmarshal(data, &suites); err != nil {
		var single junitSuite
		if err2 := xml.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("parse junit report: %w", err)
		}
		suites.Suites = []junitSuite{single}
	}

	report := &Report{}
	for _, suite := range suites.Suites {
		report.TotalDuration += seconds(suite.Time)
		for _, jc := range suite.Cases {
			tc := TestCase{
				Name:     jc.Name,
				File:     jc.File,
				Stem:     stemFromTest(jc.File, jc.ClassName, jc.Name),
				Duration: seconds(jc.Time),
				Output:   strings.TrimSpace(jc.SystemOut + "\n" + jc.SystemErr),
			}
			switch {
			case jc.Failure != nil:
				tc.Outcome = TestFailed
				tc.Output = joinNonEmpty(jc.Failure.Message, jc.Failure.Text, tc.Output)
			case jc.Error != nil:
				tc.Outcome = TestFailed
				tc.Output = joinNonEmpty(jc.Error.Message, jc.Error.Text, tc.Output)
			case jc.Skipped != nil && jc.Skipped.Type == "pytest.xfail":
				tc.Outcome = TestXFailed
			case jc.Skipped != nil:
				tc.Outcome = TestSkipped
			default:
				tc.Outcome = TestPassed
			}
			report.add(tc)
		}
	}
	return report, nil
}

func (r *Report) add(tc TestCase) {
	r.Cases = append(r.Cases, tc)
	r.Collected++
	switch tc.Outcome {
	case TestPassed:
		r.Passed++
	case TestFailed:
		r.Failed++
	case TestSkipped:
		r.Skipped++
	case TestXFailed:
		r.XFailed++
	}
}

// stemFromTest recovers the stem from "test_<stem>.py". The file attribute
// is preferred because stems may contain dots that classname flattens.
// Collection errors carry neither, only the module path in name.
func stemFromTest(file, className, name string) string {
	if file != "" {
		base := filepath.Base(file)
		if strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py") {
			return strings.TrimSuffix(strings.TrimPrefix(base, "test_"), ".py")
		}
	}
	for _, s := range []string{className, strings.TrimSuffix(name, ".py")} {
		if i := strings.LastIndex(s, "test_"); i >= 0 {
			return s[i+len("test_"):]
		}
	}
	return ""
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
