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
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AleutianAI/honegumi/cmd/honegumi/config"
	"github.com/AleutianAI/honegumi/pkg/logging"
)

func TestWatchFiles_DebouncesWrites(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	watched := filepath.Join(dir, "main.py.tmpl")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(watched, []byte("v1"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{watched}, 50*time.Millisecond, logging.Nop(), func() { calls.Add(1) })
	}()
	// Let the watcher register before writing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte("v2"), 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFiles did not stop")
	}
}

func TestWatchFiles_MissingDir(t *testing.T) {
	err := watchFiles(context.Background(), []string{filepath.Join(t.TempDir(), "absent", "x.tmpl")},
		time.Millisecond, logging.Nop(), func() {})
	assert.Error(t, err)
}

func TestWatchedFiles(t *testing.T) {
	a := &app{cfg: config.DefaultConfig()}
	assert.Empty(t, a.watchedFiles())

	a.cfg.Templates.Script = "main.py.tmpl"
	a.cfg.Schema = "schema.yaml"
	assert.Equal(t, []string{"main.py.tmpl", "schema.yaml"}, a.watchedFiles())
}

func TestWatch_NothingToWatch(t *testing.T) {
	clearTestEnv(t)
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to watch")
}
