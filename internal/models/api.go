// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package models

import "time"

// APIResponse is the envelope of every API response.
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "from must not be after to",
//	    "details": {"field": "to"}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"` // success or error
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Count       *int      `json:"count,omitempty"` // number of items in a listing
}

// APIError is the machine-readable error of a failed request.
//
// Codes: VALIDATION_ERROR, DATABASE_ERROR, SERVICE_UNAVAILABLE,
// PASS_IN_PROGRESS, INGEST_ERROR, PAYLOAD_TOO_LARGE.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status            string     `json:"status"` // healthy or degraded
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	CircuitBreaker    string     `json:"circuit_breaker,omitempty"`
	IngestTransport   string     `json:"ingest_transport,omitempty"`
	AnalysisRunning   bool       `json:"analysis_running"`
	Watermark         *time.Time `json:"watermark,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}

// IngestResult is returned by the ingest endpoint.
type IngestResult struct {
	Accepted int `json:"accepted"`
}

// DeleteResult is returned by the anomaly purge endpoint.
type DeleteResult struct {
	Deleted int64 `json:"deleted"`
}
