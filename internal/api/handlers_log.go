// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/horus/internal/ingest"
	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/models"
)

// ListEvents returns stored access-log events.
//
// @Summary List access-log events
// @Description Events with from < timestamp < to, ascending by timestamp. Both bounds are optional RFC 3339 instants.
// @Tags Log
// @Produce json
// @Param from query string false "Exclusive lower bound (RFC 3339)"
// @Param to query string false "Exclusive upper bound (RFC 3339)"
// @Param limit query int false "Maximum events (default 1000, max 10000)"
// @Success 200 {object} models.APIResponse{data=[]models.Event}
// @Failure 400 {object} models.APIResponse "Malformed range"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Failure 503 {object} models.APIResponse "Storage circuit open"
// @Router /log [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	def, maxSize := h.pageSizes()
	limit, ok := parseLimit(w, r, def, maxSize)
	if !ok {
		return
	}

	events, err := h.store.ListEvents(r.Context(), models.EventFilter{From: from, To: to, Limit: limit})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	respondSuccess(w, http.StatusOK, events, len(events), start)
}

// IngestEvents accepts a batch of access-log events.
//
// @Summary Ingest access-log events
// @Description Accepts a JSON array of events, a single JSON event, or text/plain combined-log lines. The batch is written ahead and stored asynchronously.
// @Tags Log
// @Accept json
// @Accept plain
// @Produce json
// @Param events body []models.Event true "Events"
// @Success 202 {object} models.APIResponse{data=models.IngestResult}
// @Failure 400 {object} models.APIResponse "Invalid event"
// @Failure 413 {object} models.APIResponse "Body too large"
// @Failure 503 {object} models.APIResponse "Ingest unavailable"
// @Router /log [post]
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.ingest == nil {
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Ingest is not enabled", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, CodeValidation, "Failed to read request body", err)
		return
	}

	events, err := decodeEvents(r.Header.Get("Content-Type"), body)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	if len(events) == 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "Request contains no events", nil)
		return
	}

	accepted, err := h.ingest.Submit(r.Context(), events)
	if err != nil {
		var ierr *ingest.InvalidEventError
		if errors.As(err, &ierr) {
			apiErr := ierr.Err.ToAPIError()
			details := apiErr.Details
			if details == nil {
				details = map[string]interface{}{}
			}
			details["event_index"] = ierr.Index
			respondJSON(w, http.StatusBadRequest, &models.APIResponse{
				Status:   "error",
				Metadata: models.Metadata{Timestamp: time.Now().UTC()},
				Error: &models.APIError{
					Code:    apiErr.Code,
					Message: ierr.Error(),
					Details: details,
				},
			})
			return
		}
		respondError(w, http.StatusServiceUnavailable, CodeIngest, "Failed to accept events", err)
		return
	}

	logging.Ctx(r.Context()).Debug().Int("accepted", accepted).Msg("Ingest batch accepted")
	respondSuccess(w, http.StatusAccepted, models.IngestResult{Accepted: accepted}, -1, start)
}

// decodeEvents reads combined-log lines for text/plain bodies and JSON
// otherwise. JSON may be an array of events or a single event.
func decodeEvents(contentType string, body []byte) ([]models.Event, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/plain" {
		return ingest.ParseLines(bytes.NewReader(body))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var e models.Event
		if err := json.Unmarshal(trimmed, &e); err != nil {
			return nil, errors.New("invalid JSON event: " + jsonErrorMessage(err))
		}
		return []models.Event{e}, nil
	}

	var events []models.Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, errors.New("invalid JSON event array: " + jsonErrorMessage(err))
	}
	return events, nil
}

func jsonErrorMessage(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
