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

	"github.com/google/uuid"

	"github.com/tomtom215/horus/internal/models"
)

const eventColumns = `id, source_ip, COALESCE(remote_user, ''), ts, COALESCE(method, ''),
	COALESCE(endpoint, ''), COALESCE(protocol, ''), COALESCE(status_code, 0), bytes_sent,
	COALESCE(referer, ''), COALESCE(user_agent, ''), request_length, COALESCE(message, '')`

// InsertEvents stores events in a single transaction. Events without an ID
// get a random one; events whose ID already exists are skipped. Returns the
// number of rows inserted.
func (db *DB) InsertEvents(ctx context.Context, events []models.Event) (inserted int, err error) {
	if len(events) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (id, source_ip, remote_user, ts, method, endpoint, protocol,
			status_code, bytes_sent, referer, user_agent, request_length, message, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	now := time.Now().UTC()
	for i := range events {
		e := &events[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.Message == "" && !e.Timestamp.IsZero() {
			e.Message = e.FormatMessage()
		}

		res, execErr := stmt.ExecContext(ctx,
			e.ID, e.SourceIP, nullString(e.User), nullTime(e.Timestamp), nullString(e.Method),
			nullString(e.Endpoint), nullString(e.Protocol), nullInt(e.StatusCode), e.BytesSent,
			nullString(e.Referer), nullString(e.UserAgent), e.RequestLength, nullString(e.Message), now)
		if execErr != nil {
			err = fmt.Errorf("failed to insert event %s: %w", e.ID, execErr)
			return 0, err
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			inserted += int(n)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit events: %w", err)
	}
	return inserted, nil
}

// ListAfter returns events with after < ts < before, ordered by (ts, id).
// limit <= 0 means no limit.
func (db *DB) ListAfter(ctx context.Context, after, before time.Time, limit int) ([]models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + eventColumns + ` FROM events WHERE ts > ? AND ts < ? ORDER BY ts, id`
	args := []interface{}{after.UTC(), before.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return db.queryEvents(ctx, query, args...)
}

// ListEvents returns stored events for the log listing endpoint. The bounds
// are exclusive on both sides.
func (db *DB) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.From != nil {
		where = append(where, "ts > ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "ts < ?")
		args = append(args, filter.To.UTC())
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts NULLS LAST, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return db.queryEvents(ctx, query, args...)
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var events []models.Event
	for rows.Next() {
		var (
			e  models.Event
			ts sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.SourceIP, &e.User, &ts, &e.Method,
			&e.Endpoint, &e.Protocol, &e.StatusCode, &e.BytesSent,
			&e.Referer, &e.UserAgent, &e.RequestLength, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if ts.Valid {
			e.Timestamp = ts.Time.UTC()
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
