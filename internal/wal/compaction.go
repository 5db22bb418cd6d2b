// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package wal

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/horus/internal/logging"
)

// Compact deletes confirmed entries and runs value-log GC. It returns the
// number of entries removed.
func (w *BadgerWAL) Compact() (int64, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}
	start := time.Now()

	var count int64
	err := w.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		// Keys are collected first; deleting while iterating is not allowed.
		var keysToDelete [][]byte
		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keysToDelete = append(keysToDelete, it.Item().KeyCopy(nil))
		}

		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete confirmed entries: %w", err)
	}

	if err := w.runGC(); err != nil {
		logging.Warn().Err(err).Msg("WAL compaction GC error")
	}

	w.mu.Lock()
	w.lastCompaction = time.Now()
	w.mu.Unlock()

	if count > 0 {
		logging.Debug().Int64("deleted", count).Dur("duration", time.Since(start)).Msg("WAL compaction removed entries")
	}
	return count, nil
}

// runGC runs value-log GC until there is nothing left to rewrite.
func (w *BadgerWAL) runGC() error {
	if w.config.Path == "" {
		return nil // no value log in memory mode
	}
	for {
		err := w.db.RunValueLogGC(w.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}
