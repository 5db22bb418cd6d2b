// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/horus/internal/database"
	"github.com/tomtom215/horus/internal/detection"
	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/models"
	"github.com/tomtom215/horus/internal/validation"
)

// sanitizeLogValue replaces control characters so request-derived strings
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope. count is reported for
// listings and may be negative to omit it.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, count int, start time.Time) {
	meta := models.Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(start).Milliseconds(),
	}
	if count >= 0 {
		meta.Count = &count
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidationError renders a RequestValidationError with per-field
// details.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}

// respondServiceError maps storage, analysis and validation failures to
// HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(w, verr)
	case errors.Is(err, detection.ErrPassInProgress):
		respondError(w, http.StatusConflict, CodePassInProgress, "An analysis pass is already running", nil)
	case errors.Is(err, detection.ErrInvalidRange):
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, database.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "Storage temporarily unavailable", err)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nothing useful can be written.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request cancelled by client")
	case errors.Is(err, models.ErrMissingRequiredField):
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Stored event is missing a required field", err)
	default:
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Storage operation failed", err)
	}
}
