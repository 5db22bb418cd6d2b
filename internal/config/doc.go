// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package config provides centralized configuration management for Horus.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, or config.yaml / /etc/horus/config.yaml
 3. Environment variables, mapped explicitly (unmapped variables are ignored)

# Sections

  - server: HTTP listener (HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT)
  - database: DuckDB file and storage circuit breaker (DUCKDB_PATH, DB_BREAKER_*)
  - analysis: pass scheduling (ANALYSIS_INTERVAL, ANALYSIS_OVERLAP_POLICY,
    ANALYSIS_MAX_EVENTS, ANALYSIS_SETTLE_DELAY, ANALYSIS_CARRY_OPEN_WINDOWS)
  - detection: detector windows and thresholds (BRUTE_FORCE_*, FLOOD_*, BOT_*)
  - ingest: ingest topic and write-ahead log (INGEST_*)
  - nats: JetStream transport for nats-tagged builds (NATS_*)
  - webhook: anomaly notifications (WEBHOOK_*)
  - api, security, logging: pagination, CORS and rate limiting, log output

Example:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(cfg.Analysis.Interval)
*/
package config
