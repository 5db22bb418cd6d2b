// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
database_schema.go - Database Schema Management

Tables:
  - events: immutable access-log entries, ordered by ts
  - anomalies: one row per closed detection window, keyed by a deterministic id
  - watermarks: analysis high-water marks (key "last_analyzed")
  - detector_state: JSON snapshots of open detector windows between passes

All timestamps are stored as UTC TIMESTAMP (microsecond precision).
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// createIndexes creates the lookup indexes used by range queries
func (db *DB) createIndexes(ctx context.Context) error {
	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

// Detector-facing columns are nullable so an incomplete row is stored as
// received and rejected when a pass reads it.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		source_ip TEXT NOT NULL,
		remote_user TEXT,
		ts TIMESTAMP,
		method TEXT,
		endpoint TEXT,
		protocol TEXT,
		status_code INTEGER,
		bytes_sent BIGINT NOT NULL DEFAULT 0,
		referer TEXT,
		user_agent TEXT,
		request_length BIGINT NOT NULL DEFAULT 0,
		message TEXT,
		ingested_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS anomalies (
		id TEXT PRIMARY KEY,
		timestamp_from TIMESTAMP NOT NULL,
		timestamp_to TIMESTAMP NOT NULL,
		endpoint TEXT NOT NULL,
		number_of_hits INTEGER NOT NULL,
		level TEXT NOT NULL,
		anomaly_type TEXT NOT NULL,
		body_bytes_sent BIGINT NOT NULL,
		request_length BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS watermarks (
		key TEXT PRIMARY KEY,
		ts TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS detector_state (
		kind TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts)`,
	`CREATE INDEX IF NOT EXISTS idx_anomalies_from ON anomalies(timestamp_from)`,
	`CREATE INDEX IF NOT EXISTS idx_anomalies_type ON anomalies(anomaly_type)`,
}
