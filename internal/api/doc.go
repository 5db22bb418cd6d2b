// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package api serves the Horus HTTP API on a chi router.

Routes:

	GET    /api/v1/log                 events with from < ts < to
	POST   /api/v1/log                 ingest JSON events or combined-log lines
	GET    /api/v1/log/anomalies       anomalies strictly inside (from, to), optional kind
	POST   /api/v1/log/anomalies       on-demand analysis pass
	DELETE /api/v1/log/anomalies       purge anomalies in range
	GET    /api/v1/log/watermark       analysis watermark
	GET    /api/v1/health[/live|/ready]
	GET    /metrics                    Prometheus
	GET    /swagger/*                  Swagger UI

from and to are optional RFC 3339 instants. Every response uses the
models.APIResponse envelope; failures carry an APIError code:

	400 VALIDATION_ERROR     malformed range, from after to, invalid event
	409 PASS_IN_PROGRESS     another analysis pass holds the guard
	413 PAYLOAD_TOO_LARGE    ingest body over ingest.max_body_bytes
	429 RATE_LIMIT_EXCEEDED  go-chi/httprate per-IP limit
	500 DATABASE_ERROR       storage failure
	503 SERVICE_UNAVAILABLE  storage circuit breaker open

Handlers depend on the Store, Analyzer and Ingester interfaces, satisfied in
production by database.ResilientStore, detection.Runner and ingest.Pipeline.
*/
package api
