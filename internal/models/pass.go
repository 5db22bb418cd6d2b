// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package models

// PassCommit is everything one analysis (sub-)pass writes. Stores apply it
// atomically so anomalies never become visible without the matching
// watermark advance.
type PassCommit struct {
	Anomalies []Anomaly

	// Watermark is nil for explicit-range passes.
	Watermark *Watermark

	// DetectorStates holds JSON-encoded trailing window states keyed by
	// detector kind. Nil leaves stored states untouched.
	DetectorStates map[AnomalyKind][]byte
}
