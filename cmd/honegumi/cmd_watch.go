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
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/pkg/logging"
)

const defaultDebounce = 500 * time.Millisecond

type watchOptions struct {
	debounce time.Duration
	generate generateOptions
}

// watchedFiles are the inputs whose edits trigger a rebuild.
func (a *app) watchedFiles() []string {
	var files []string
	for _, f := range []string{a.cfg.Templates.Script, a.cfg.Templates.Site, a.cfg.Schema} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

func runWatch(cmd *cobra.Command, a *app, opts watchOptions) error {
	files := a.watchedFiles()
	if len(files) == 0 {
		return errors.New("nothing to watch: set templates.script, templates.site or schema in the config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rebuild := func() {
		// Schema edits need a fresh engine.
		engine, err := buildEngine(a.cfg.Schema)
		if err != nil {
			a.out.Error(err.Error())
			return
		}
		a.engine = engine
		res, err := generate(ctx, a, opts.generate)
		if err != nil {
			a.out.Error(err.Error())
			return
		}
		a.out.Summary(res.Compatible, res.Invalid(), res.Failed, res.Total)
	}

	rebuild()
	a.out.Info("watching " + strings.Join(files, ", ") + " (Ctrl-C to stop)")
	return watchFiles(ctx, files, opts.debounce, a.logger, rebuild)
}

// watchFiles calls onChange once per burst of writes to files, after
// debounce of quiet. It blocks until ctx is done.
//
// Directories are watched rather than files, so editors that replace a file
// by renaming keep being seen.
func watchFiles(ctx context.Context, files []string, debounce time.Duration, logger *logging.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		wanted[abs] = true
		dir := filepath.Dir(abs)
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !wanted[abs] {
				continue
			}
			logger.Debug("input changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			logger.Info("regenerating")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			logger.Debug("watcher stopping")
			return nil
		}
	}
}
