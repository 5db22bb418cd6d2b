// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/horus/internal/config"
	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/metrics"
	"github.com/tomtom215/horus/internal/models"
)

const breakerName = "duckdb"

// ResilientStore wraps DB with a circuit breaker so that a failing database
// is rejected fast instead of blocking every pass and request on it.
//
// Context cancellation counts as success for the breaker: a client going
// away says nothing about database health.
type ResilientStore struct {
	db *DB
	cb *gobreaker.CircuitBreaker[any]
}

// NewResilientStore wraps db. A nil cfg uses threshold 5, timeout 30s and a
// single half-open probe.
func NewResilientStore(db *DB, cfg *config.DatabaseConfig) *ResilientStore {
	threshold := uint32(5)
	timeout := 30 * time.Second
	maxRequests := uint32(1)
	if cfg != nil {
		if cfg.BreakerFailureThreshold > 0 {
			threshold = cfg.BreakerFailureThreshold
		}
		if cfg.BreakerTimeout > 0 {
			timeout = cfg.BreakerTimeout
		}
		if cfg.BreakerMaxRequests > 0 {
			maxRequests = cfg.BreakerMaxRequests
		}
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: maxRequests,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening storage circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &ResilientStore{db: db, cb: cb}
}

// execute runs fn through the breaker and records query metrics under
// operation.
func execute[T any](s *ResilientStore, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := s.cb.Execute(func() (any, error) {
		return fn()
	})
	metrics.RecordDBQuery(operation, time.Since(start), err)

	var zero T
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Str("operation", operation).Msg("[CIRCUIT BREAKER] Request rejected")
			return zero, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// State reports the breaker state: "closed", "half-open" or "open".
func (s *ResilientStore) State() string {
	return stateToString(s.cb.State())
}

// DB returns the wrapped database.
func (s *ResilientStore) DB() *DB {
	return s.db
}

func (s *ResilientStore) Ping(ctx context.Context) error {
	_, err := execute(s, "ping", func() (struct{}, error) {
		return struct{}{}, s.db.Ping(ctx)
	})
	return err
}

func (s *ResilientStore) InsertEvents(ctx context.Context, events []models.Event) (int, error) {
	return execute(s, "insert_events", func() (int, error) {
		return s.db.InsertEvents(ctx, events)
	})
}

func (s *ResilientStore) ListAfter(ctx context.Context, after, before time.Time, limit int) ([]models.Event, error) {
	return execute(s, "list_after", func() ([]models.Event, error) {
		return s.db.ListAfter(ctx, after, before, limit)
	})
}

func (s *ResilientStore) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	return execute(s, "list_events", func() ([]models.Event, error) {
		return s.db.ListEvents(ctx, filter)
	})
}

func (s *ResilientStore) ListAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.Anomaly, error) {
	return execute(s, "list_anomalies", func() ([]models.Anomaly, error) {
		return s.db.ListAnomalies(ctx, filter)
	})
}

func (s *ResilientStore) DeleteAnomalies(ctx context.Context, from, to *time.Time) (int64, error) {
	return execute(s, "delete_anomalies", func() (int64, error) {
		return s.db.DeleteAnomalies(ctx, from, to)
	})
}

func (s *ResilientStore) GetWatermark(ctx context.Context, key string) (*models.Watermark, error) {
	return execute(s, "get_watermark", func() (*models.Watermark, error) {
		return s.db.GetWatermark(ctx, key)
	})
}

func (s *ResilientStore) CommitPass(ctx context.Context, commit *models.PassCommit) ([]models.Anomaly, error) {
	return execute(s, "commit_pass", func() ([]models.Anomaly, error) {
		return s.db.CommitPass(ctx, commit)
	})
}

func (s *ResilientStore) LoadDetectorStates(ctx context.Context) (map[models.AnomalyKind][]byte, error) {
	return execute(s, "load_detector_states", func() (map[models.AnomalyKind][]byte, error) {
		return s.db.LoadDetectorStates(ctx)
	})
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
