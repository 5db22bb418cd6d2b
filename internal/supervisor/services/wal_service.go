// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package services

import (
	"context"
	"time"

	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/wal"
)

// WALRecoverer redelivers pending WAL entries. Satisfied by
// *ingest.Pipeline.
type WALRecoverer interface {
	Recover(ctx context.Context) (*wal.RecoveryResult, error)
}

// WALRecoveryService runs WAL recovery once at start and then every
// interval. Recovery also compacts confirmed entries.
//
//	tree.AddDataService(services.NewWALRecoveryService(pipeline, cfg.Ingest.RecoveryInterval))
type WALRecoveryService struct {
	recoverer WALRecoverer
	interval  time.Duration
	name      string
}

// NewWALRecoveryService wraps recoverer. A non-positive interval means 30s.
func NewWALRecoveryService(recoverer WALRecoverer, interval time.Duration) *WALRecoveryService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &WALRecoveryService{
		recoverer: recoverer,
		interval:  interval,
		name:      "wal-recovery",
	}
}

// Serve implements suture.Service.
func (s *WALRecoveryService) Serve(ctx context.Context) error {
	s.recover(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.recover(ctx)
		}
	}
}

func (s *WALRecoveryService) recover(ctx context.Context) {
	result, err := s.recoverer.Recover(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("WAL recovery failed")
		}
		return
	}
	if result == nil || result.TotalPending == 0 {
		return
	}
	logging.Info().
		Int("pending", result.TotalPending).
		Int("recovered", result.Recovered).
		Int("failed", result.Failed).
		Int("expired", result.Expired).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("WAL recovery finished")
}

// String implements fmt.Stringer.
func (s *WALRecoveryService) String() string {
	return s.name
}
