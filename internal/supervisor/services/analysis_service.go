// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/horus/internal/detection"
	"github.com/tomtom215/horus/internal/logging"
)

// PassTrigger starts a scheduled analysis pass. Satisfied by
// *detection.Runner.
type PassTrigger interface {
	Trigger(ctx context.Context) (*detection.PassResult, error)
}

// AnalysisSchedulerService triggers an analysis pass every interval. A
// failed pass is logged and the next tick tries again from the same
// watermark, so the service itself only stops on shutdown.
type AnalysisSchedulerService struct {
	trigger    PassTrigger
	interval   time.Duration
	runOnStart bool
	name       string
	logger     zerolog.Logger
}

// NewAnalysisSchedulerService wraps trigger. A non-positive interval means
// one minute.
func NewAnalysisSchedulerService(trigger PassTrigger, interval time.Duration, runOnStart bool) *AnalysisSchedulerService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &AnalysisSchedulerService{
		trigger:    trigger,
		interval:   interval,
		runOnStart: runOnStart,
		name:       "analysis-scheduler",
		logger:     logging.WithComponent("analysis-scheduler"),
	}
}

// Serve implements suture.Service.
func (s *AnalysisSchedulerService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Bool("run_on_start", s.runOnStart).Msg("Analysis scheduler started")

	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *AnalysisSchedulerService) tick(ctx context.Context) {
	result, err := s.trigger.Trigger(ctx)
	switch {
	case err == nil && result == nil:
		s.logger.Trace().Msg("Scheduled analysis queued behind running pass")
	case err == nil:
		s.logger.Debug().
			Str("pass_id", result.PassID).
			Int("events", result.Events).
			Int("anomalies", result.Inserted).
			Msg("Scheduled analysis pass finished")
	case errors.Is(err, detection.ErrPassInProgress):
		s.logger.Debug().Msg("Scheduled analysis skipped, pass in progress")
	case ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Error().Err(err).Msg("Scheduled analysis pass failed")
	}
}

// String implements fmt.Stringer.
func (s *AnalysisSchedulerService) String() string {
	return s.name
}
