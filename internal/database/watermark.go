// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/models"
)

// queryRower is the QueryRowContext subset shared by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// GetWatermark returns the stored watermark for key, or nil if none exists.
func (db *DB) GetWatermark(ctx context.Context, key string) (*models.Watermark, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return getWatermark(ctx, db.conn, key)
}

func getWatermark(ctx context.Context, q queryRower, key string) (*models.Watermark, error) {
	var wm models.Watermark
	err := q.QueryRowContext(ctx,
		`SELECT key, ts, updated_at FROM watermarks WHERE key = ?`, key,
	).Scan(&wm.Key, &wm.Timestamp, &wm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watermark %s: %w", key, err)
	}
	wm.Timestamp = wm.Timestamp.UTC()
	wm.UpdatedAt = wm.UpdatedAt.UTC()
	return &wm, nil
}

// PutWatermark stores wm unless the stored value is already at or past it.
// Returns true when the row was written.
func (db *DB) PutWatermark(ctx context.Context, wm models.Watermark) (written bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	written, err = putWatermarkTx(ctx, tx, wm)
	if err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit watermark: %w", err)
	}
	return written, nil
}

// putWatermarkTx never moves a watermark backwards.
func putWatermarkTx(ctx context.Context, tx *sql.Tx, wm models.Watermark) (bool, error) {
	current, err := getWatermark(ctx, tx, wm.Key)
	if err != nil {
		return false, err
	}
	if current != nil && !wm.Timestamp.After(current.Timestamp) {
		logging.Debug().
			Str("key", wm.Key).
			Time("current", current.Timestamp).
			Time("proposed", wm.Timestamp).
			Msg("Watermark not advanced")
		return false, nil
	}

	updatedAt := wm.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO watermarks (key, ts, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET ts = excluded.ts, updated_at = excluded.updated_at`,
		wm.Key, wm.Timestamp.UTC(), updatedAt.UTC(),
	); err != nil {
		return false, fmt.Errorf("failed to store watermark %s: %w", wm.Key, err)
	}
	return true, nil
}
