// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package simulator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/horus/internal/logging"
)

// RunConfig controls Run.
type RunConfig struct {
	// Batches is the number of batches to produce. Zero runs until ctx is
	// cancelled.
	Batches int

	// Interval paces batches in real time, each stamped with the wall clock.
	// Zero produces a backfill: batches are written as fast as the sink
	// accepts them and stamped consecutively from Start.
	Interval time.Duration

	// Start is the first batch start in backfill mode. Zero means
	// Batches*BatchWindow before now.
	Start time.Time
}

// RunStats summarises a Run.
type RunStats struct {
	Batches int
	Events  int
	Failed  int
}

// Run feeds batches from g into sink. A failed write is logged and counted;
// Run only returns early when ctx is cancelled.
func Run(ctx context.Context, g *Generator, sink Sink, cfg RunConfig) (RunStats, error) {
	var (
		stats   RunStats
		limiter *rate.Limiter
		next    = cfg.Start
	)
	if cfg.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Interval), 1)
	} else if next.IsZero() {
		next = time.Now().Add(-time.Duration(cfg.Batches) * g.cfg.BatchWindow)
	}

	for cfg.Batches == 0 || stats.Batches < cfg.Batches {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return stats, err
			}
			next = time.Now()
		} else if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch := g.Batch(next)
		next = next.Add(g.cfg.BatchWindow)
		stats.Batches++

		if err := sink.Write(ctx, batch); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			stats.Failed++
			logging.Warn().Err(err).Int("events", len(batch)).Msg("Batch write failed")
			continue
		}
		stats.Events += len(batch)
		logging.Debug().Int("events", len(batch)).Int("active_campaigns", len(g.active)).Msg("Batch written")
	}
	return stats, nil
}
