// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package database provides DuckDB-backed storage for access-log events,
detected anomalies, the analysis watermark and carried detector state.

# Storage Model

Events are append-only and read back in (ts, id) order. Anomalies carry a
deterministic ID derived from kind, window bounds and endpoint, so inserting
the same anomaly twice is a no-op. CommitPass writes the anomalies of one
analysis pass together with the watermark and detector states in a single
transaction; the watermark is never moved backwards.

# Resilience

ResilientStore wraps DB with a sony/gobreaker circuit breaker. After a run
of consecutive failures calls fail fast with ErrCircuitOpen until the
breaker's timeout elapses and a probe succeeds.

Example:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    log.Fatal(err)
	}
	defer db.Close()
	store := database.NewResilientStore(db, &cfg.Database)
*/
package database
