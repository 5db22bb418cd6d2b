// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import (
	"net/http"

	"github.com/tomtom215/horus/internal/models"
)

// BruteForceDetector is the brute-force detector.
type BruteForceDetector struct {
	windowDetector
}

// NewBruteForceDetector flags bursts of rejected authentication.
//
// An event qualifies when it is a 401 on any endpoint, or a 403 on the
// login endpoint. A bare 401 is always an authentication failure; a 403
// elsewhere is usually an authorization decision and is ignored.
func NewBruteForceDetector(cfg BruteForceConfig) *BruteForceDetector {
	login := cfg.LoginEndpoint
	minHits := cfg.MinHits

	return &BruteForceDetector{windowDetector{
		kind:      models.KindBruteForce,
		severity:  models.SeverityHigh,
		window:    cfg.Window,
		tolerance: cfg.Tolerance,
		qualifies: func(e *models.Event) bool {
			return e.StatusCode == http.StatusUnauthorized ||
				(e.StatusCode == http.StatusForbidden && e.Endpoint == login)
		},
		triggered: func(buf []models.Event) bool {
			return len(buf) >= minHits
		},
	}}
}
