// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package api

import "errors"

// ErrMalformedRange is returned for a from or to parameter that is not an
// RFC 3339 instant.
var ErrMalformedRange = errors.New("malformed range parameter")

// Error codes of the APIError envelope.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeDatabase         = "DATABASE_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodePassInProgress   = "PASS_IN_PROGRESS"
	CodeIngest           = "INGEST_ERROR"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)
