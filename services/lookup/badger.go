// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

const (
	entryPrefix = "entry/"
	manifestKey = "meta/manifest"
)

// BadgerConfig holds configuration for a BadgerStore.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// BadgerStore persists entries in an embedded BadgerDB so a later process
// (the configurator server) can read what `generate` wrote.
//
// Keys are "entry/<stem>" holding JSON-encoded entries, plus one manifest key.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens a BadgerStore.
//
// # Description
//
// Opens the database at cfg.Path, creating the directory if needed, or an
// in-memory database when cfg.InMemory is set.
//
// # Inputs
//
//   - cfg: Store configuration. Path is required unless InMemory is true.
//
// # Outputs
//
//   - *BadgerStore: The opened store. Caller must call Close().
//   - error: Non-nil if the path is missing or the database cannot be opened.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Put inserts or replaces the entry for e.Stem.
func (s *BadgerStore) Put(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", e.Stem, err)
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(entryPrefix+e.Stem), data)
	})
}

// Get returns the entry for stem.
func (s *BadgerStore) Get(ctx context.Context, stem string) (Entry, error) {
	var e Entry
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, entryPrefix+stem, &e)
	})
	if errors.Is(err, ErrNotFound) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, stem)
	}
	return e, err
}

// SetOutcome reads, updates and rewrites the entry in one transaction.
func (s *BadgerStore) SetOutcome(ctx context.Context, stem string, outcome Outcome) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		var e Entry
		if err := getJSON(txn, entryPrefix+stem, &e); err != nil {
			return err
		}
		e.Outcome = outcome
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return txn.Set([]byte(entryPrefix+stem), data)
	})
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, stem)
	}
	return err
}

// List returns every entry. Badger iterates keys in byte order, so entries
// come out sorted by stem.
func (s *BadgerStore) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := s.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// PutManifest records run metadata.
func (s *BadgerStore) PutManifest(ctx context.Context, m Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(manifestKey), data)
	})
}

// Manifest returns the recorded run metadata.
func (s *BadgerStore) Manifest(ctx context.Context) (Manifest, error) {
	var m Manifest
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, manifestKey, &m)
	})
	if errors.Is(err, ErrNotFound) {
		return Manifest{}, fmt.Errorf("%w: manifest", ErrNotFound)
	}
	return m, err
}

// Reset drops every key.
func (s *BadgerStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.DropAll()
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.Update(fn)
}

func (s *BadgerStore) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.View(fn)
}

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

var _ Store = (*BadgerStore)(nil)
