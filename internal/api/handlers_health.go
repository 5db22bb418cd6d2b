// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

// Health reports the status of storage and analysis.
//
// @Summary Get system health status
// @Description Database connectivity, circuit breaker state, ingest transport, analysis state, watermark and uptime.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		IngestTransport:   h.transport,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if bs, ok := h.store.(BreakerStater); ok {
		health.CircuitBreaker = bs.State()
		if health.CircuitBreaker == "open" {
			health.Status = "degraded"
		}
	}
	if h.analyzer != nil {
		health.AnalysisRunning = h.analyzer.Busy()
	}
	if dbConnected {
		if wm, err := h.store.GetWatermark(r.Context(), models.WatermarkKey); err == nil && wm != nil {
			ts := wm.Timestamp
			health.Watermark = &ts
		}
	}

	respondSuccess(w, http.StatusOK, health, -1, start)
}

// HealthLive answers liveness probes regardless of dependencies.
//
// @Summary Liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, -1, time.Now())
}

// HealthReady answers readiness probes: 200 only when storage responds.
//
// @Summary Readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.store.Ping(r.Context()) != nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Database not available", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"ready": true}, -1, time.Now())
}
