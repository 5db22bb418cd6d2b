// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

// CommitPass writes the results of one analysis pass atomically: anomalies
// first, then the watermark, then detector states. It returns the anomalies
// that were not already stored.
func (db *DB) CommitPass(ctx context.Context, commit *models.PassCommit) (fresh []models.Anomaly, err error) {
	if commit == nil {
		return nil, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	fresh, err = insertAnomaliesTx(ctx, tx, commit.Anomalies)
	if err != nil {
		return nil, err
	}

	if commit.Watermark != nil {
		if _, err = putWatermarkTx(ctx, tx, *commit.Watermark); err != nil {
			return nil, err
		}
	}

	if commit.DetectorStates != nil {
		now := time.Now().UTC()
		for kind, state := range commit.DetectorStates {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO detector_state (kind, state, updated_at) VALUES (?, ?, ?)
				ON CONFLICT (kind) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
				string(kind), string(state), now,
			); err != nil {
				err = fmt.Errorf("failed to store detector state %s: %w", kind, err)
				return nil, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pass: %w", err)
	}
	return fresh, nil
}

// LoadDetectorStates returns the detector states saved by the last carrying
// pass, keyed by anomaly kind.
func (db *DB) LoadDetectorStates(ctx context.Context) (map[models.AnomalyKind][]byte, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT kind, state FROM detector_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to query detector states: %w", err)
	}
	defer closeWithLog(rows, "rows")

	states := make(map[models.AnomalyKind][]byte)
	for rows.Next() {
		var kind, state string
		if err := rows.Scan(&kind, &state); err != nil {
			return nil, fmt.Errorf("failed to scan detector state: %w", err)
		}
		states[models.AnomalyKind(kind)] = []byte(state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detector states: %w", err)
	}
	return states, nil
}
