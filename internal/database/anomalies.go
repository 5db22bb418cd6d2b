// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

// InsertAnomalies stores anomalies, skipping IDs that already exist, and
// returns how many were new.
func (db *DB) InsertAnomalies(ctx context.Context, anomalies []models.Anomaly) (inserted int, err error) {
	if len(anomalies) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	fresh, err := insertAnomaliesTx(ctx, tx, anomalies)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit anomalies: %w", err)
	}
	return len(fresh), nil
}

// insertAnomaliesTx inserts inside tx and returns the anomalies that were
// not already present.
func insertAnomaliesTx(ctx context.Context, tx *sql.Tx, anomalies []models.Anomaly) ([]models.Anomaly, error) {
	if len(anomalies) == 0 {
		return nil, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anomalies (id, timestamp_from, timestamp_to, endpoint, number_of_hits,
			level, anomaly_type, body_bytes_sent, request_length, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare anomaly insert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	now := time.Now().UTC()
	fresh := make([]models.Anomaly, 0, len(anomalies))
	for i := range anomalies {
		a := anomalies[i]
		if a.ID == "" {
			a.ID = models.AnomalyID(a.Kind, a.From, a.To, a.Endpoint)
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}

		res, err := stmt.ExecContext(ctx,
			a.ID, a.From.UTC(), a.To.UTC(), a.Endpoint, a.Hits,
			string(a.Severity), string(a.Kind), a.BytesSent, a.RequestLength, a.CreatedAt.UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to insert anomaly %s: %w", a.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n > 0 {
			fresh = append(fresh, a)
		}
	}
	return fresh, nil
}

// anomalyWhere builds the shared WHERE clause for listing and deleting.
// An anomaly is in range when it lies strictly inside (from, to).
func anomalyWhere(from, to *time.Time, kind models.AnomalyKind) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if from != nil {
		where = append(where, "timestamp_from > ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		where = append(where, "timestamp_to < ?")
		args = append(args, to.UTC())
	}
	if kind != "" {
		where = append(where, "anomaly_type = ?")
		args = append(args, string(kind))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListAnomalies returns stored anomalies ordered by timestamp_from.
func (db *DB) ListAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.Anomaly, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := anomalyWhere(filter.From, filter.To, filter.Kind)
	query := `SELECT id, timestamp_from, timestamp_to, endpoint, number_of_hits,
		level, anomaly_type, body_bytes_sent, request_length, created_at
		FROM anomalies` + where + ` ORDER BY timestamp_from, id`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var anomalies []models.Anomaly
	for rows.Next() {
		var (
			a        models.Anomaly
			severity string
			kind     string
		)
		if err := rows.Scan(&a.ID, &a.From, &a.To, &a.Endpoint, &a.Hits,
			&severity, &kind, &a.BytesSent, &a.RequestLength, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		a.Severity = models.Severity(severity)
		a.Kind = models.AnomalyKind(kind)
		a.From = a.From.UTC()
		a.To = a.To.UTC()
		a.CreatedAt = a.CreatedAt.UTC()
		anomalies = append(anomalies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating anomalies: %w", err)
	}
	return anomalies, nil
}

// DeleteAnomalies removes anomalies strictly inside (from, to); nil bounds
// are open. Returns the number of rows removed.
func (db *DB) DeleteAnomalies(ctx context.Context, from, to *time.Time) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := anomalyWhere(from, to, "")
	res, err := db.conn.ExecContext(ctx, `DELETE FROM anomalies`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete anomalies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}
