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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/honegumi/pkg/logging"
	"github.com/AleutianAI/honegumi/pkg/options"
	"github.com/AleutianAI/honegumi/services/lookup"
)

// fakeRunner reports every test file in dir as passed, except stems listed
// in fail.
type fakeRunner struct {
	fail  map[string]bool
	err   error
	calls int
}

func (f *fakeRunner) Run(_ context.Context, dir string) (*Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for _, e := range entries {
		stem := stemFromTest(e.Name(), "", "")
		outcome := TestPassed
		if f.fail[stem] {
			outcome = TestFailed
		}
		report.add(TestCase{Name: "test_script", File: e.Name(), Stem: stem, Outcome: outcome})
	}
	report.add(TestCase{Stem: "not-a-stem", Outcome: TestPassed})
	return report, nil
}

// smallEngine: objective × model, where single+FB is incompatible, and a
// derived "samples" extra that the smoke override shrinks.
func smallEngine() *options.Engine {
	schema := options.MustSchema(
		options.OptionRow{Name: "objective", Options: []options.Value{options.String("single"), options.String("multi")}},
		options.OptionRow{Name: "model", Options: []options.Value{options.String("Default"), options.String("FB")}},
	)
	rules := options.Rules{{
		Name:  "single_forbids_fb",
		Check: func(s *options.Selection) bool { return s.Value("objective").Is("single") && s.Value("model").Is("FB") },
	}}
	derive := options.DeriveFunc(func(_ []string, s *options.Selection) *options.Selection {
		s.SetExtra("samples", 1024)
		return s
	})
	return options.NewEngine(schema, rules, derive)
}

const smallTemplate = "# {{.objective}} {{.model}}\nsamples = {{py .samples}}\nquick = {{py .dummy}}\n"

type pipelineFixture struct {
	cfg    Config
	store  *lookup.MemoryStore
	runner *fakeRunner
	rec    *logging.Recorder
	root   string
}

func newFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	r, err := NewRenderer("small", smallTemplate)
	require.NoError(t, err)
	root := t.TempDir()
	rec := logging.NewRecorder()
	f := &pipelineFixture{
		store:  lookup.NewMemoryStore(),
		runner: &fakeRunner{},
		rec:    rec,
		root:   root,
	}
	f.cfg = Config{
		Engine:      smallEngine(),
		Renderer:    r,
		Store:       f.store,
		Checker:     NewSyntaxChecker(),
		Runner:      f.runner,
		Badges:      testBadges(),
		ScriptDir:   filepath.Join(root, "scripts"),
		TestDir:     filepath.Join(root, "tests"),
		NotebookDir: filepath.Join(root, "notebooks"),
		RunID:       "run-1",
		TestOverride: func(s *options.Selection) *options.Selection {
			s.SetExtra("samples", 16)
			return s
		},
		Logger: logging.New(logging.Config{Quiet: true, Exporter: rec, Level: logging.LevelDebug}),
	}
	return f
}

func (f *pipelineFixture) read(t *testing.T, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(append([]string{f.root}, parts...)...))
	require.NoError(t, err)
	return string(data)
}

func TestNewPipeline_Validates(t *testing.T) {
	_, err := NewPipeline(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pipeline config")

	f := newFixture(t)
	f.cfg.RunID = ""
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	assert.Len(t, p.RunID(), 36, "defaults to a UUID")
}

func TestPipeline_Run(t *testing.T) {
	f := newFixture(t)
	f.runner.fail = map[string]bool{"objective-multi+model-FB": true}
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Compatible)
	assert.Equal(t, 1, res.Incompatible)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Invalid())
	require.NotNil(t, res.Report)
	assert.Equal(t, 1, f.runner.calls)

	ctx := context.Background()
	invalid, err := f.store.Get(ctx, "objective-single+model-FB")
	require.NoError(t, err)
	assert.False(t, invalid.Compatible)
	assert.Equal(t, InvalidMessage, invalid.Script)
	assert.Equal(t, []string{"single_forbids_fb"}, invalid.Violations)
	assert.Equal(t, []string{"single", "FB"}, invalid.Values)
	assert.Empty(t, invalid.Preamble)
	_, err = os.Stat(filepath.Join(f.cfg.ScriptDir, "objective-single+model-FB.py"))
	assert.True(t, os.IsNotExist(err), "incompatible combinations write no files")

	ok, err := f.store.Get(ctx, "objective-single+model-Default")
	require.NoError(t, err)
	assert.Equal(t, lookup.OutcomePassed, ok.Outcome)
	assert.Equal(t, "single,Default", ok.LookupKey)
	assert.Equal(t, "# single Default\nsamples = 1024\nquick = False\n", ok.Script)
	assert.Contains(t, ok.Preamble, "objective-single%2Bmodel-Default.ipynb")

	failed, err := f.store.Get(ctx, "objective-multi+model-FB")
	require.NoError(t, err)
	assert.Equal(t, lookup.OutcomeFailed, failed.Outcome)

	m, err := f.store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, []string{"objective", "model"}, m.Names)

	_, found := f.rec.Find("test outcome for unknown stem")
	assert.True(t, found)
	done, found := f.rec.Find("generation complete")
	require.True(t, found)
	assert.Equal(t, 1, done.Attrs["failed"])
}

func TestPipeline_WritesArtifacts(t *testing.T) {
	f := newFixture(t)
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	stem := "objective-multi+model-Default"
	assert.Equal(t, "# multi Default\nsamples = 1024\nquick = False\n", f.read(t, "scripts", stem+".py"))

	test := f.read(t, "tests", "test_"+stem+".py")
	assert.True(t, strings.HasPrefix(test, "def test_script():\n    # multi Default\n"))
	assert.Contains(t, test, "    samples = 1024\n", "smoke override off")
	assert.Contains(t, test, "    quick = True\n")
	assert.True(t, strings.HasSuffix(test, "if __name__ == '__main__':\n    test_script()"))

	nb := f.read(t, "notebooks", stem+".ipynb")
	assert.Contains(t, nb, `"nbformat": 4`)
	assert.Contains(t, nb, "%pip install ax-platform")
	assert.Contains(t, nb, "Open In Colab")
}

func TestPipeline_SmokeOverrideOnlyAffectsTests(t *testing.T) {
	f := newFixture(t)
	f.cfg.Smoke = true
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	stem := "objective-multi+model-FB"
	assert.Contains(t, f.read(t, "scripts", stem+".py"), "samples = 1024")
	assert.Contains(t, f.read(t, "tests", "test_"+stem+".py"), "samples = 16")
}

func TestPipeline_ClearsStaleOutputs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.cfg.ScriptDir, 0750))
	stale := filepath.Join(f.cfg.ScriptDir, "stale.py")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	require.NoError(t, f.store.Put(context.Background(), lookup.Entry{Stem: "stale"}))

	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = f.store.Get(context.Background(), "stale")
	assert.ErrorIs(t, err, lookup.ErrNotFound)
}

func TestPipeline_SkipTests(t *testing.T) {
	f := newFixture(t)
	f.cfg.SkipTests = true
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Report)
	assert.Zero(t, f.runner.calls)

	e, err := f.store.Get(context.Background(), "objective-multi+model-FB")
	require.NoError(t, err)
	assert.Equal(t, lookup.OutcomeUntested, e.Outcome)
}

func TestPipeline_NoNotebooksOrBadges(t *testing.T) {
	f := newFixture(t)
	f.cfg.NotebookDir = ""
	f.cfg.Badges = Badges{}
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	e, err := f.store.Get(context.Background(), "objective-multi+model-FB")
	require.NoError(t, err)
	assert.Empty(t, e.Preamble)
	_, err = os.Stat(filepath.Join(f.root, "notebooks"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_TemplateFailureAborts(t *testing.T) {
	f := newFixture(t)
	r, err := NewRenderer("broken", "{{.missing}}")
	require.NoError(t, err)
	f.cfg.Renderer = r
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, ErrTemplate)
	assert.Zero(t, f.runner.calls)
	_, found := f.rec.Find("generation failed")
	assert.True(t, found)
}

func TestPipeline_SyntaxFailureAborts(t *testing.T) {
	f := newFixture(t)
	r, err := NewRenderer("broken", "def f(:\n")
	require.NoError(t, err)
	f.cfg.Renderer = r
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestPipeline_FormatterFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.cfg.Formatter = FormatterFunc(func(context.Context, string) (string, error) {
		return "", NewCommandError("black -q -", 123, "cannot parse", nil)
	})
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 123, cmdErr.ExitCode)
}

func TestPipeline_FormatterApplied(t *testing.T) {
	f := newFixture(t)
	f.cfg.Formatter = FormatterFunc(func(_ context.Context, src string) (string, error) {
		return strings.ToUpper(src), nil
	})
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, f.read(t, "scripts", "objective-multi+model-FB.py"), "SAMPLES = 1024")
}

func TestPipeline_RunnerErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.runner.err = errors.New("pytest not installed")
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run tests")
}

func TestPipeline_Cancelled(t *testing.T) {
	f := newFixture(t)
	p, err := NewPipeline(f.cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreOutcome(t *testing.T) {
	assert.Equal(t, lookup.OutcomePassed, storeOutcome(TestPassed))
	assert.Equal(t, lookup.OutcomeFailed, storeOutcome(TestFailed))
	assert.Equal(t, lookup.OutcomeSkipped, storeOutcome(TestSkipped))
	assert.Equal(t, lookup.OutcomeSkipped, storeOutcome(TestXFailed))
}
