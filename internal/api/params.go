// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/horus/internal/models"
	"github.com/tomtom215/horus/internal/validation"
)

// parseTimeParam reads an optional RFC 3339 instant. Fractional seconds
// are accepted.
func parseTimeParam(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q is not an RFC 3339 timestamp", ErrMalformedRange, key, value)
	}
	ts = ts.UTC()
	return &ts, nil
}

// parseRange reads the from/to pair and validates their order.
func parseRange(w http.ResponseWriter, r *http.Request) (from, to *time.Time, ok bool) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		respondRangeError(w, "from", err)
		return nil, nil, false
	}
	to, err = parseTimeParam(r, "to")
	if err != nil {
		respondRangeError(w, "to", err)
		return nil, nil, false
	}
	if verr := validation.ValidateRange(from, to); verr != nil {
		respondValidationError(w, verr)
		return nil, nil, false
	}
	return from, to, true
}

func respondRangeError(w http.ResponseWriter, field string, err error) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    CodeValidation,
			Message: err.Error(),
			Details: map[string]interface{}{"field": field, "format": "RFC3339"},
		},
	})
}

// parseLimit reads the limit parameter, falling back to def and clamping to
// maxLimit. A malformed or non-positive value is a validation error.
func parseLimit(w http.ResponseWriter, r *http.Request, def, maxLimit int) (int, bool) {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return def, true
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status: "error",
			Metadata: models.Metadata{
				Timestamp: time.Now().UTC(),
			},
			Error: &models.APIError{
				Code:    CodeValidation,
				Message: "limit must be a positive integer",
				Details: map[string]interface{}{"field": "limit", "value": value},
			},
		})
		return 0, false
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit, true
}

// parseKind reads the optional anomaly kind filter.
func parseKind(w http.ResponseWriter, r *http.Request) (models.AnomalyKind, bool) {
	value := r.URL.Query().Get("kind")
	if value == "" {
		return "", true
	}
	kind := models.AnomalyKind(value)
	if !kind.Valid() {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status: "error",
			Metadata: models.Metadata{
				Timestamp: time.Now().UTC(),
			},
			Error: &models.APIError{
				Code:    CodeValidation,
				Message: fmt.Sprintf("kind must be one of %s, %s, %s", models.KindBruteForce, models.KindDDoS, models.KindBot),
				Details: map[string]interface{}{"field": "kind", "value": value},
			},
		})
		return "", false
	}
	return kind, true
}
