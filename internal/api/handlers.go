// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"context"
	"time"

	"github.com/tomtom215/horus/internal/config"
	"github.com/tomtom215/horus/internal/detection"
	"github.com/tomtom215/horus/internal/models"
)

// Store is the storage surface the handlers read and purge.
type Store interface {
	Ping(ctx context.Context) error
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.Anomaly, error)
	DeleteAnomalies(ctx context.Context, from, to *time.Time) (int64, error)
	GetWatermark(ctx context.Context, key string) (*models.Watermark, error)
}

// Analyzer runs on-demand analysis passes.
type Analyzer interface {
	Run(ctx context.Context, from, to *time.Time) (*detection.PassResult, error)
	Busy() bool
}

// Ingester accepts event batches.
type Ingester interface {
	Submit(ctx context.Context, events []models.Event) (int, error)
}

// BreakerStater is implemented by stores guarded by a circuit breaker.
type BreakerStater interface {
	State() string
}

// Version is reported by the health endpoint.
var Version = "dev"

// Handler serves the Horus HTTP API.
type Handler struct {
	store     Store
	analyzer  Analyzer
	ingest    Ingester
	config    *config.Config
	transport string
	startTime time.Time
}

// NewHandler creates a Handler. ingest may be nil, in which case POST
// /api/v1/log answers 503.
func NewHandler(store Store, analyzer Analyzer, ingest Ingester, cfg *config.Config) *Handler {
	return &Handler{
		store:     store,
		analyzer:  analyzer,
		ingest:    ingest,
		config:    cfg,
		startTime: time.Now(),
	}
}

// SetIngestTransport records the ingest bus kind shown by the health endpoint.
func (h *Handler) SetIngestTransport(kind string) {
	h.transport = kind
}

func (h *Handler) pageSizes() (def, maxSize int) {
	def, maxSize = 1000, 10000
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			def = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxSize = h.config.API.MaxPageSize
		}
	}
	return def, maxSize
}

func (h *Handler) maxBodyBytes() int64 {
	if h.config != nil && h.config.Ingest.MaxBodyBytes > 0 {
		return h.config.Ingest.MaxBodyBytes
	}
	return 10 << 20
}
