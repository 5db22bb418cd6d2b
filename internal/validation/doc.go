// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Package validation wraps go-playground/validator v10 with a singleton
// validator, readable error messages and conversion to the API's
// VALIDATION_ERROR shape.
//
// Field names in errors come from json tags. Custom rules:
//   - http_method: request method of an ingested event
//   - TimeRange: struct-level check that from is not after to
//
// Usage:
//
//	if verr := validation.ValidateStruct(&event); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
