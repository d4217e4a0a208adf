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
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/cmd/honegumi/config"
	"github.com/AleutianAI/honegumi/services/publish"
)

type publishOptions struct {
	bucket string
	prefix string
}

// publishTargets maps the generated directories to object sub-paths that
// mirror their layout under the docs directory.
func publishTargets(out config.OutputConfig) []publish.Target {
	dest := func(dir string) string {
		rel, err := filepath.Rel(out.DocDir, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Base(dir)
		}
		return filepath.ToSlash(rel)
	}
	return []publish.Target{
		{Dir: out.ScriptDir, Dest: dest(out.ScriptDir)},
		{Dir: out.NotebookDir, Dest: dest(out.NotebookDir)},
	}
}

func runPublish(cmd *cobra.Command, a *app, opts publishOptions) error {
	cfg := publish.Config{
		Bucket:          a.cfg.Publish.Bucket,
		Prefix:          a.cfg.Publish.Prefix,
		CredentialsFile: a.cfg.Publish.CredentialsFile,
		Logger:          a.logger,
	}
	if opts.bucket != "" {
		cfg.Bucket = opts.bucket
	}
	if opts.prefix != "" {
		cfg.Prefix = opts.prefix
	}
	if cfg.Bucket == "" {
		return errors.New("no bucket: set publish.bucket in the config or pass --bucket")
	}

	ctx := cmd.Context()
	client, err := publish.NewGCS(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	sum, err := client.Publish(ctx, publishTargets(a.cfg.Output)...)
	if err != nil {
		return err
	}
	n, err := client.UploadFile(ctx, a.cfg.Output.SitePath(), a.cfg.Output.SiteName)
	if err != nil {
		return err
	}
	sum.Add(publish.Summary{Files: 1, Bytes: n})

	a.out.Success(fmt.Sprintf("uploaded %d files (%d bytes) to gs://%s/%s",
		sum.Files, sum.Bytes, cfg.Bucket, client.ObjectName("")))
	return nil
}
