// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package main is the Horus server.

Horus ingests HTTP access-log events, stores them in DuckDB and runs
sliding-window detectors over them on a schedule. Detected anomalies are
served over a REST API.

# Architecture

	RootSupervisor ("horus")
	├── data-layer       WAL recovery (ingest.wal_enabled)
	├── messaging-layer  ingest consumer (watermill router)
	├── analysis-layer   analysis scheduler
	└── api-layer        HTTP server

	POST /api/v1/log ─► validate ─► WAL ─► bus ─► consumer ─► DuckDB
	                                                             │
	                   scheduler ─► Runner.Trigger ─► detectors ◄┘
	                                     │
	                                     └─► anomalies + watermark (one transaction)

Initialization order:

 1. Configuration: koanf (defaults, config.yaml, environment variables)
 2. Logging: zerolog
 3. Database: DuckDB behind a circuit breaker
 4. Analysis: runner, detectors, webhook notifier
 5. Ingest: WAL, bus (gochannel, or NATS JetStream with -tags nats), pipeline
 6. HTTP: chi router, Swagger UI at /swagger/, Prometheus at /metrics
 7. Supervisor tree

# Build Tags

	go build ./cmd/server              # in-process bus
	go build -tags nats ./cmd/server   # NATS JetStream bus, optional embedded server

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up to
ten seconds, the ingest router closes, and the WAL and database are closed
last.
*/
package main
