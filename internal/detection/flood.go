// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import "github.com/tomtom215/horus/internal/models"

// FloodDetector is the flood detector.
type FloodDetector struct {
	windowDetector
}

// NewFloodDetector flags short windows that are heavy both in request count
// and in bytes served.
func NewFloodDetector(cfg FloodConfig) *FloodDetector {
	minHits, minBytes := cfg.MinHits, cfg.MinBytes

	return &FloodDetector{windowDetector{
		kind:      models.KindDDoS,
		severity:  models.SeverityHigh,
		window:    cfg.Window,
		tolerance: cfg.Tolerance,
		qualifies: func(*models.Event) bool { return true },
		triggered: func(buf []models.Event) bool {
			if len(buf) < minHits {
				return false
			}
			var total int64
			for i := range buf {
				total += buf[i].BytesSent
			}
			return total >= minBytes
		},
	}}
}
