// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.toSlogLevel())
	assert.Equal(t, slog.LevelError, LevelError.toSlogLevel())
	assert.Equal(t, slog.LevelInfo, Level(-1).toSlogLevel(), "unknown defaults to Info")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"warn", LevelWarn, false},
		{"Error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNew_TextToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Service: "generate"})
	defer logger.Close()

	logger.Info("rendered script", "stem", "objective-single")
	out := buf.String()
	assert.Contains(t, out, "rendered script")
	assert.Contains(t, out, "stem=objective-single")
	assert.Contains(t, out, "service=generate")
}

func TestNew_JSONToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, JSON: true})
	defer logger.Close()

	logger.Warn("tests skipped", "reason", "HONEGUMI_SKIP_TESTS")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "tests skipped", rec["msg"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: LevelWarn})
	defer logger.Close()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	out := buf.String()
	assert.NotContains(t, out, "msg=debug")
	assert.NotContains(t, out, "msg=info")
	assert.Contains(t, out, "msg=warn")
	assert.Contains(t, out, "msg=error")
}

func TestNew_QuietWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Quiet: true})
	defer logger.Close()

	logger.Error("hidden")
	assert.Empty(t, buf.String())
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Quiet: true, LogDir: dir, Service: "serve"})
	logger.Info("listening", "addr", ":8080")
	require.NoError(t, logger.Close())

	name := "serve_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"listening"`)
	assert.Contains(t, string(data), `"addr":":8080"`)
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Quiet: true, LogDir: dir})
	logger.Info("x")
	require.NoError(t, logger.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "honegumi_*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNew_WithLogDir_Unwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	logger := New(Config{Quiet: true, LogDir: filepath.Join(file, "logs")})
	defer logger.Close()
	assert.Nil(t, logger.file)
	logger.Info("still works")
}

func TestNew_MultipleHandlers(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	logger := New(Config{Output: &buf, LogDir: dir})
	_, ok := logger.slog.Handler().(*multiHandler)
	assert.True(t, ok, "console + file should fan out")
	logger.Info("both")
	require.NoError(t, logger.Close())
	assert.Contains(t, buf.String(), "both")
}

func TestDefaultAndNop(t *testing.T) {
	d := Default()
	assert.Equal(t, "honegumi", d.config.Service)
	assert.NoError(t, d.Close())

	n := Nop()
	n.Error("discarded")
	assert.NoError(t, n.Close())
}

// =============================================================================
// Export Tests
// =============================================================================

func TestLogger_ExportsToRecorder(t *testing.T) {
	rec := NewRecorder()
	logger := New(Config{Quiet: true, Exporter: rec, Service: "generate", Level: LevelInfo})

	logger.Debug("filtered")
	logger.With("run_id", "abc").Info("batch complete", "combinations", 16)

	require.Equal(t, []string{"batch complete"}, rec.Messages())
	entry := rec.Last()
	assert.Equal(t, LevelInfo, entry.Level)
	assert.Equal(t, "generate", entry.Service)
	assert.Equal(t, "abc", entry.Attrs["run_id"])
	assert.Equal(t, 16, entry.Attrs["combinations"])
	assert.NoError(t, logger.Close())
}

type failingExporter struct{ Recorder }

func (f *failingExporter) Flush(context.Context) error { return errors.New("flush failed") }

func TestLogger_CloseReportsExporterError(t *testing.T) {
	logger := New(Config{Quiet: true, Exporter: &failingExporter{}})
	err := logger.Close()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "flush exporter"))
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	logger := New(Config{Quiet: true, LogDir: t.TempDir(), Exporter: NewRecorder()})
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogger_ConcurrentUse(t *testing.T) {
	rec := NewRecorder()
	logger := New(Config{Quiet: true, Exporter: rec})
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.With("worker", n).Info("tick")
		}(i)
	}
	wg.Wait()
	assert.Len(t, rec.Entries(), 20)
}

func TestRecorder_Find(t *testing.T) {
	rec := NewRecorder()
	_ = rec.Export(context.Background(), LogEntry{Message: "a"})
	_ = rec.Export(context.Background(), LogEntry{Message: "b", Attrs: map[string]any{"k": 1}})

	e, ok := rec.Find("b")
	require.True(t, ok)
	assert.Equal(t, 1, e.Attrs["k"])
	_, ok = rec.Find("c")
	assert.False(t, ok)
	assert.Equal(t, LogEntry{}, NewRecorder().Last())
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	}}
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("g"))
	logger.Info("m", "x", 1)
	assert.Contains(t, a.String(), "k=v")
	assert.Contains(t, b.String(), "g.x=1")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".honegumi/logs"), expandPath("~/.honegumi/logs"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
	assert.Equal(t, "", expandPath(""))
}

func TestArgsToMap(t *testing.T) {
	got := argsToMap([]any{"a", 1, 2, "skipped", "dangling"})
	assert.Equal(t, map[string]any{"a": 1}, got)
}
