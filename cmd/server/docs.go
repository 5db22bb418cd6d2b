// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// @title Horus API
// @version 1.0
// @description HTTP access-log ingestion and anomaly detection.
// @description
// @description Events are posted to `/log`, analysed on a schedule by the brute-force,
// @description flood and bot detectors, and the resulting anomalies are queried by time range.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {}},
// @description   "metadata": {"timestamp": "2026-03-14T09:00:00Z"}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/horus
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

package main
