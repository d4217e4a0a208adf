// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket keeps committed objects in memory.
type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string][]byte
	attrs    map[string]ObjectAttrs
	closeErr error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, attrs: map[string]ObjectAttrs{}}
}

type fakeWriter struct {
	b      *fakeBucket
	name   string
	attrs  ObjectAttrs
	buf    bytes.Buffer
	closed bool
}

func (w *fakeWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *fakeWriter) Close() error {
	if w.b.closeErr != nil {
		return w.b.closeErr
	}
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	w.b.objects[w.name] = w.buf.Bytes()
	w.b.attrs[w.name] = w.attrs
	w.closed = true
	return nil
}

func (b *fakeBucket) NewWriter(_ context.Context, object string, attrs ObjectAttrs) io.WriteCloser {
	return &fakeWriter{b: b, name: object, attrs: attrs}
}

func (b *fakeBucket) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for n := range b.objects {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// =============================================================================
// NewGCS
// =============================================================================

func TestNewGCS_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewGCS(ctx, Config{})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewGCS(ctx, Config{Bucket: "b", CredentialsFile: "/nonexistent/key.json"})
	assert.ErrorContains(t, err, "service account key not found")
	assert.ErrorContains(t, err, "/nonexistent/key.json")

	_, err = NewGCS(ctx, Config{Bucket: "b", CredentialsFile: t.TempDir()})
	assert.ErrorContains(t, err, "is a directory")
}

func TestNewGCS_InvalidCredentialsFile(t *testing.T) {
	key := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(key, []byte("not valid json"), 0600))

	_, err := NewGCS(context.Background(), Config{Bucket: "b", CredentialsFile: key})
	assert.ErrorContains(t, err, "failed to create GCS storage client")
}

// =============================================================================
// Uploads
// =============================================================================

func TestObjectName(t *testing.T) {
	c := NewClient(newFakeBucket(), Config{Bucket: "b", Prefix: "/honegumi/v1/"})
	assert.Equal(t, "honegumi/v1/docs/index.html", c.ObjectName("docs/index.html"))
	assert.Equal(t, "honegumi/v1/a.py", c.ObjectName("/a.py"))

	bare := NewClient(newFakeBucket(), Config{Bucket: "b"})
	assert.Equal(t, "a.py", bare.ObjectName("a.py"))
}

func TestUploadFile(t *testing.T) {
	bucket := newFakeBucket()
	c := NewClient(bucket, Config{Bucket: "b", Prefix: "p"})
	src := filepath.Join(t.TempDir(), "objective-single.py")
	require.NoError(t, os.WriteFile(src, []byte("print(1)\n"), 0644))

	n, err := c.UploadFile(context.Background(), src, "scripts/objective-single.py")
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)
	assert.Equal(t, "print(1)\n", string(bucket.objects["p/scripts/objective-single.py"]))
	assert.Equal(t, "text/x-python; charset=utf-8", bucket.attrs["p/scripts/objective-single.py"].ContentType)
}

func TestUploadFile_Errors(t *testing.T) {
	bucket := newFakeBucket()
	c := NewClient(bucket, Config{Bucket: "b"})

	_, err := c.UploadFile(context.Background(), "/nonexistent/file.py", "x.py")
	assert.ErrorContains(t, err, "failed to open the local file")

	src := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))
	bucket.closeErr = errors.New("quota exceeded")
	_, err = c.UploadFile(context.Background(), src, "a.py")
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Empty(t, bucket.names())
}

func TestUploadDir_KeepsRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":          "a",
		"nested/b.py":   "bb",
		"nested/c.html": "<p>",
	})
	bucket := newFakeBucket()
	c := NewClient(bucket, Config{Bucket: "b"})

	sum, err := c.UploadDir(context.Background(), root, "out")
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 3, Bytes: 6}, sum)
	assert.Equal(t, []string{"out/a.py", "out/nested/b.py", "out/nested/c.html"}, bucket.names())
}

func TestUploadDir_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(newFakeBucket(), Config{Bucket: "b"}).UploadDir(ctx, root, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublish(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/honegumi.html":              "<html>",
		"scripts/objective-multi.py":      "m",
		"notebooks/objective-multi.ipynb": "{}",
	})
	bucket := newFakeBucket()
	c := NewClient(bucket, Config{Bucket: "b", Prefix: "site"})

	sum, err := c.Publish(context.Background(),
		Target{Dir: filepath.Join(root, "docs"), Dest: ""},
		Target{Dir: filepath.Join(root, "scripts"), Dest: "scripts"},
		Target{Dir: filepath.Join(root, "notebooks"), Dest: "notebooks"},
		Target{Dir: filepath.Join(root, "tests"), Dest: "tests"},
		Target{},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, []string{
		"site/honegumi.html",
		"site/notebooks/objective-multi.ipynb",
		"site/scripts/objective-multi.py",
	}, bucket.names())
	assert.Equal(t, "no-cache, no-store, must-revalidate", bucket.attrs["site/honegumi.html"].CacheControl)
}

func TestAttrsFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.py", "text/x-python; charset=utf-8"},
		{"a.ipynb", "application/x-ipynb+json"},
		{"A.HTML", "text/html; charset=utf-8"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttrsFor(tt.name).ContentType)
		})
	}
}

func TestClose_WithoutStorageClient(t *testing.T) {
	assert.NoError(t, NewClient(newFakeBucket(), Config{}).Close())
}
