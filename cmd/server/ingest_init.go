// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package main

import (
	"fmt"

	"github.com/tomtom215/horus/internal/config"
	"github.com/tomtom215/horus/internal/ingest"
	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/wal"
)

// IngestComponents holds the ingest pipeline and what it owns.
type IngestComponents struct {
	wal      *wal.BadgerWAL // nil when ingest.wal_enabled is false
	bus      *ingest.Bus
	pipeline *ingest.Pipeline
}

// InitIngest opens the WAL, connects the bus and builds the pipeline that
// stores consumed batches in store.
func InitIngest(cfg *config.Config, store ingest.EventStore) (*IngestComponents, error) {
	c := &IngestComponents{}
	logger := ingest.NewLogger()

	if cfg.Ingest.WALEnabled {
		walCfg := wal.DefaultConfig()
		walCfg.Path = cfg.Ingest.WALPath
		w, err := wal.Open(&walCfg)
		if err != nil {
			return nil, fmt.Errorf("open ingest WAL: %w", err)
		}
		c.wal = w
	} else {
		logging.Warn().Msg("Ingest WAL disabled (INGEST_WAL_ENABLED=false). Accepted batches are lost if the consumer fails.")
	}

	bus, err := ingest.NewBus(&cfg.NATS, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("connect ingest bus: %w", err)
	}
	c.bus = bus

	pipelineCfg := ingest.DefaultConfig()
	pipelineCfg.Topic = cfg.Ingest.Topic
	pipelineCfg.CloseTimeout = cfg.Ingest.CloseTimeout

	pipeline, err := ingest.NewPipeline(pipelineCfg, store, c.wal, bus, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create ingest pipeline: %w", err)
	}
	c.pipeline = pipeline

	logging.Info().
		Str("transport", bus.Kind).
		Str("topic", pipelineCfg.Topic).
		Bool("wal", c.wal != nil).
		Msg("Ingest pipeline initialized")
	return c, nil
}

// Pipeline returns the ingest pipeline.
func (c *IngestComponents) Pipeline() *ingest.Pipeline {
	return c.pipeline
}

// TransportKind names the bus transport for the health endpoint.
func (c *IngestComponents) TransportKind() string {
	return c.bus.Kind
}

// HasWAL reports whether batches are written ahead.
func (c *IngestComponents) HasWAL() bool {
	return c.wal != nil
}

// Close releases the pipeline, the bus and the WAL in that order.
func (c *IngestComponents) Close() {
	if c.pipeline != nil {
		if err := c.pipeline.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ingest router")
		}
	}
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ingest bus")
		}
	}
	if c.wal != nil {
		if err := c.wal.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing WAL")
		}
	}
}
