// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/vigil/internal/logging"
)

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory; used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// GCInterval and GCRatio drive value log garbage collection in
	// (*BadgerStore).Serve. Defaults: 10m and 0.5.
	GCInterval time.Duration
	GCRatio    float64
}

// BadgerStore is a Store backed by BadgerDB.
type BadgerStore struct {
	db   *badger.DB
	opts BadgerOptions
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (or creates) a badger database.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("storage: badger path is required")
	}
	if opts.GCInterval <= 0 {
		opts.GCInterval = 10 * time.Minute
	}
	if opts.GCRatio <= 0 || opts.GCRatio >= 1 {
		opts.GCRatio = 0.5
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("Storage opened")
	return &BadgerStore{db: db, opts: opts}, nil
}

func (b *BadgerStore) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, ErrClosed
	}
	return out, err
}

func (b *BadgerStore) Set(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *BadgerStore) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *BadgerStore) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Str("path", b.opts.Path).Msg("Storage closed")
	return nil
}

// Serve runs value log garbage collection until ctx is done. It implements
// suture.Service so the data layer of the supervisor tree owns it.
func (b *BadgerStore) Serve(ctx context.Context) error {
	if b.opts.InMemory {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(b.opts.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.collectGarbage()
		}
	}
}

func (b *BadgerStore) String() string { return "badger-gc" }

// collectGarbage rewrites value log files until badger reports nothing to do.
func (b *BadgerStore) collectGarbage() {
	rewrites := 0
	for {
		err := b.db.RunValueLogGC(b.opts.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			logging.Warn().Err(err).Msg("Value log GC failed")
			break
		}
		rewrites++
	}
	if rewrites > 0 {
		logging.Debug().Int("rewrites", rewrites).Msg("Value log GC completed")
	}
}
