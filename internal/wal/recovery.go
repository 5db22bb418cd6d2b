// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package wal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/horus/internal/logging"
)

// Publisher re-delivers a pending entry.
type Publisher interface {
	PublishEntry(ctx context.Context, entry *Entry) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, entry *Entry) error

// PublishEntry implements Publisher.
func (f PublisherFunc) PublishEntry(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// RecoveryResult summarizes one RecoverPending run.
type RecoveryResult struct {
	TotalPending int
	Recovered    int
	Failed       int
	Expired      int
	Skipped      int
	Errors       []error
	Duration     time.Duration
}

// RecoverPending re-delivers every pending entry older than minAge through
// publisher. Younger entries are skipped so that batches still in flight on
// the bus are not delivered twice. Expired entries and entries past
// MaxRetries are deleted.
//
// A successful PublishEntry does not confirm the entry; the consumer does
// that once the batch is stored. Running recovery repeatedly is safe.
func (w *BadgerWAL) RecoverPending(ctx context.Context, publisher Publisher, minAge time.Duration) (*RecoveryResult, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}

	start := time.Now()
	result := &RecoveryResult{}

	entries, err := w.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pending entries: %w", err)
	}
	result.TotalPending = len(entries)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			result.Duration = time.Since(start)
			return result, err
		}

		if time.Since(entry.CreatedAt) < minAge {
			result.Skipped++
			continue
		}
		if !w.tryClaim(entry.ID) {
			result.Skipped++
			continue
		}
		w.recoverEntry(ctx, entry, publisher, result)
		w.release(entry.ID)
	}

	result.Duration = time.Since(start)
	if result.Recovered+result.Failed+result.Expired > 0 {
		logging.Info().
			Int("pending", result.TotalPending).
			Int("recovered", result.Recovered).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Int("skipped", result.Skipped).
			Dur("duration", result.Duration).
			Msg("WAL recovery complete")
	}
	return result, nil
}

func (w *BadgerWAL) recoverEntry(ctx context.Context, entry *Entry, publisher Publisher, result *RecoveryResult) {
	if w.config.EntryTTL > 0 && time.Since(entry.CreatedAt) > w.config.EntryTTL {
		logging.Warn().
			Str("entry_id", entry.ID).
			Dur("age", time.Since(entry.CreatedAt)).
			Msg("WAL recovery: entry expired, removing")
		if err := w.DeleteEntry(ctx, entry.ID); err != nil && !errors.Is(err, ErrEntryNotFound) {
			result.Errors = append(result.Errors, fmt.Errorf("delete expired entry %s: %w", entry.ID, err))
		}
		result.Expired++
		return
	}

	if entry.Attempts >= w.config.MaxRetries {
		logging.Error().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL recovery: entry exceeded max retries, removing")
		if err := w.DeleteEntry(ctx, entry.ID); err != nil && !errors.Is(err, ErrEntryNotFound) {
			result.Errors = append(result.Errors, fmt.Errorf("delete max-retried entry %s: %w", entry.ID, err))
		}
		result.Failed++
		return
	}

	if err := publisher.PublishEntry(ctx, entry); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL recovery: failed to publish entry")
		if updateErr := w.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil && !errors.Is(updateErr, ErrEntryNotFound) {
			result.Errors = append(result.Errors, fmt.Errorf("update attempt for %s: %w", entry.ID, updateErr))
		}
		result.Failed++
		return
	}
	result.Recovered++
}
