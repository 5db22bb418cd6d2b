// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/models"
)

// ListAnomalies returns detected anomalies.
//
// @Summary List anomalies
// @Description Anomalies whose window lies strictly inside (from, to). Both bounds are optional.
// @Tags Anomalies
// @Produce json
// @Param from query string false "Exclusive lower bound on timestamp_from (RFC 3339)"
// @Param to query string false "Exclusive upper bound on timestamp_to (RFC 3339)"
// @Param kind query string false "Anomaly type" Enums(Brute-force, DDoS, Bot)
// @Param limit query int false "Maximum anomalies (default 1000, max 10000)"
// @Success 200 {object} models.APIResponse{data=[]models.Anomaly}
// @Failure 400 {object} models.APIResponse "Malformed range"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Failure 503 {object} models.APIResponse "Storage circuit open"
// @Router /log/anomalies [get]
func (h *Handler) ListAnomalies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	kind, ok := parseKind(w, r)
	if !ok {
		return
	}
	def, maxSize := h.pageSizes()
	limit, ok := parseLimit(w, r, def, maxSize)
	if !ok {
		return
	}

	anomalies, err := h.store.ListAnomalies(r.Context(), models.AnomalyFilter{
		From:  from,
		To:    to,
		Kind:  kind,
		Limit: limit,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if anomalies == nil {
		anomalies = []models.Anomaly{}
	}

	respondSuccess(w, http.StatusOK, anomalies, len(anomalies), start)
}

// RunAnalysis runs an on-demand analysis pass.
//
// @Summary Run an analysis pass
// @Description Runs the detectors over events with from < timestamp < to and stores new anomalies. With neither bound the pass starts at the watermark and advances it; any supplied bound leaves the watermark untouched.
// @Tags Anomalies
// @Produce json
// @Param from query string false "Exclusive lower bound (RFC 3339)"
// @Param to query string false "Exclusive upper bound (RFC 3339)"
// @Success 200 {object} models.APIResponse{data=detection.PassResult}
// @Failure 400 {object} models.APIResponse "Malformed range"
// @Failure 409 {object} models.APIResponse "Pass already running"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Failure 503 {object} models.APIResponse "Storage circuit open"
// @Router /log/anomalies [post]
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	result, err := h.analyzer.Run(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("pass_id", result.PassID).
		Int("events", result.Events).
		Int("inserted", result.Inserted).
		Msg("On-demand analysis pass completed")

	respondSuccess(w, http.StatusOK, result, -1, start)
}

// DeleteAnomalies removes anomalies in a range.
//
// @Summary Delete anomalies
// @Description Deletes anomalies whose window lies strictly inside (from, to). Without bounds every anomaly is deleted.
// @Tags Anomalies
// @Produce json
// @Param from query string false "Exclusive lower bound on timestamp_from (RFC 3339)"
// @Param to query string false "Exclusive upper bound on timestamp_to (RFC 3339)"
// @Success 200 {object} models.APIResponse{data=models.DeleteResult}
// @Failure 400 {object} models.APIResponse "Malformed range"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /log/anomalies [delete]
func (h *Handler) DeleteAnomalies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteAnomalies(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("deleted", deleted).Msg("Anomalies deleted")
	respondSuccess(w, http.StatusOK, models.DeleteResult{Deleted: deleted}, -1, start)
}

// GetWatermark returns the analysis watermark.
//
// @Summary Get the analysis watermark
// @Description Timestamp through which scheduled passes have analysed events. Before the first pass the Unix epoch is returned.
// @Tags Anomalies
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Watermark}
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /log/watermark [get]
func (h *Handler) GetWatermark(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	wm, err := h.store.GetWatermark(r.Context(), models.WatermarkKey)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if wm == nil {
		wm = &models.Watermark{Key: models.WatermarkKey, Timestamp: models.Epoch}
	}

	respondSuccess(w, http.StatusOK, wm, -1, start)
}
