// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package publish uploads the generated site and artifacts to object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/AleutianAI/honegumi/pkg/logging"
)

// ObjectAttrs are the metadata set on an uploaded object.
type ObjectAttrs struct {
	ContentType  string
	CacheControl string
}

// Bucket opens object writers. Closing the writer commits the object.
type Bucket interface {
	NewWriter(ctx context.Context, object string, attrs ObjectAttrs) io.WriteCloser
}

// gcsBucket adapts a storage.BucketHandle.
type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b gcsBucket) NewWriter(ctx context.Context, object string, attrs ObjectAttrs) io.WriteCloser {
	w := b.handle.Object(object).NewWriter(ctx)
	w.ContentType = attrs.ContentType
	w.CacheControl = attrs.CacheControl
	return w
}

// Config selects the destination.
type Config struct {
	Bucket string

	// Prefix is prepended to every object name, e.g. "honegumi/v1".
	Prefix string

	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string

	Logger *logging.Logger
}

// Client uploads files under one bucket prefix.
type Client struct {
	bucket Bucket
	name   string
	prefix string
	logger *logging.Logger
	closer io.Closer
}

// Summary counts what an upload wrote.
type Summary struct {
	Files int
	Bytes int64
}

// Add accumulates another summary.
func (s *Summary) Add(o Summary) {
	s.Files += o.Files
	s.Bytes += o.Bytes
}

// NewGCS connects to Google Cloud Storage.
//
// # Description
//
// A configured CredentialsFile must exist; it is checked before the client
// is built so the error names the path instead of an auth failure.
//
// # Outputs
//
//   - *Client: Close releases the storage client
//   - error: missing bucket, missing key file, or client construction failure
func NewGCS(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("publish: bucket is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		info, err := os.Stat(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("service account key not found at path: %s: %w", cfg.CredentialsFile, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("service account key %s is a directory", cfg.CredentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	c := NewClient(gcsBucket{handle: sc.Bucket(cfg.Bucket)}, cfg)
	c.closer = sc
	return c, nil
}

// NewClient uploads through an arbitrary Bucket.
func NewClient(bucket Bucket, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		bucket: bucket,
		name:   cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With("bucket", cfg.Bucket),
	}
}

// Close releases the underlying storage client, if any.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// ObjectName joins the client prefix and a slash-separated relative name.
func (c *Client) ObjectName(rel string) string {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if c.prefix == "" {
		return rel
	}
	return path.Join(c.prefix, rel)
}

// UploadFile copies one local file to object rel under the prefix.
func (c *Client) UploadFile(ctx context.Context, localPath, rel string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open the local file: %s: %w", localPath, err)
	}
	defer f.Close()

	object := c.ObjectName(rel)
	w := c.bucket.NewWriter(ctx, object, AttrsFor(localPath))
	n, err := io.Copy(w, f)
	if err != nil {
		_ = w.Close()
		return n, fmt.Errorf("failed to copy %s to gs://%s/%s: %w", localPath, c.name, object, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("failed to close GCS writer for %s: %w", object, err)
	}
	c.logger.Debug("uploaded", "object", object, "bytes", n)
	return n, nil
}

// UploadDir uploads every regular file below localDir, keeping paths
// relative to localDir under rel.
func (c *Client) UploadDir(ctx context.Context, localDir, rel string) (Summary, error) {
	var sum Summary
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		sub, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		n, err := c.UploadFile(ctx, p, path.Join(filepath.ToSlash(rel), filepath.ToSlash(sub)))
		if err != nil {
			return err
		}
		sum.Files++
		sum.Bytes += n
		return nil
	})
	if err != nil {
		return sum, err
	}
	c.logger.Info("uploaded directory", "dir", localDir, "files", sum.Files, "bytes", sum.Bytes)
	return sum, nil
}

// Target is one local directory and its object sub-path.
type Target struct {
	Dir  string
	Dest string
}

// Publish uploads each target in order. Targets with an empty or missing
// Dir are skipped.
func (c *Client) Publish(ctx context.Context, targets ...Target) (Summary, error) {
	var total Summary
	for _, t := range targets {
		if t.Dir == "" {
			continue
		}
		if _, err := os.Stat(t.Dir); errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("publish target missing", "dir", t.Dir)
			continue
		}
		sum, err := c.UploadDir(ctx, t.Dir, t.Dest)
		total.Add(sum)
		if err != nil {
			return total, fmt.Errorf("publish %s: %w", t.Dir, err)
		}
	}
	return total, nil
}

// AttrsFor picks content type and caching by extension. The page is never
// cached so a regeneration shows up at once.
func AttrsFor(name string) ObjectAttrs {
	ext := strings.ToLower(filepath.Ext(name))
	attrs := ObjectAttrs{CacheControl: "public, max-age=300"}
	switch ext {
	case ".py":
		attrs.ContentType = "text/x-python; charset=utf-8"
	case ".ipynb":
		attrs.ContentType = "application/x-ipynb+json"
	case ".html":
		attrs.ContentType = "text/html; charset=utf-8"
		attrs.CacheControl = "no-cache, no-store, must-revalidate"
	default:
		attrs.ContentType = mime.TypeByExtension(ext)
		if attrs.ContentType == "" {
			attrs.ContentType = "application/octet-stream"
		}
	}
	return attrs
}
