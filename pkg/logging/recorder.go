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
	"context"
	"sync"
)

// Recorder is a LogExporter that keeps entries in memory.
//
//	rec := logging.NewRecorder()
//	logger := logging.New(logging.Config{Quiet: true, Exporter: rec})
//	logger.Info("rendered script", "stem", "objective-single")
//	rec.Messages() // []string{"rendered script"}
type Recorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{entries: make([]LogEntry, 0, 64)}
}

// Export appends entry.
func (r *Recorder) Export(_ context.Context, entry LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Flush is a no-op.
func (r *Recorder) Flush(context.Context) error { return nil }

// Close is a no-op; entries stay readable.
func (r *Recorder) Close() error { return nil }

// Entries returns a copy of every recorded entry.
func (r *Recorder) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the message of every recorded entry, in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Message
	}
	return out
}

// Find returns the first entry with the given message.
func (r *Recorder) Find(msg string) (LogEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Message == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}

// Last returns the most recent entry, or a zero LogEntry when empty.
func (r *Recorder) Last() LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return LogEntry{}
	}
	return r.entries[len(r.entries)-1]
}

var _ LogExporter = (*Recorder)(nil)
