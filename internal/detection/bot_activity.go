// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import "github.com/tomtom215/horus/internal/models"

// BotActivityDetector is the bot activity detector.
type BotActivityDetector struct {
	windowDetector
}

// NewBotActivityDetector flags perfectly periodic traffic from a known bot
// user agent. Volume alone is not enough: every consecutive inter-arrival
// interval in the window must be identical.
func NewBotActivityDetector(cfg BotConfig) *BotActivityDetector {
	minHits, agent := cfg.MinHits, cfg.UserAgent

	return &BotActivityDetector{windowDetector{
		kind:      models.KindBot,
		severity:  models.SeverityMedium,
		window:    cfg.Window,
		tolerance: cfg.Tolerance,
		qualifies: func(*models.Event) bool { return true },
		triggered: func(buf []models.Event) bool {
			if len(buf) < minHits {
				return false
			}
			for i := range buf {
				if buf[i].UserAgent != agent {
					return false
				}
			}
			return periodic(buf)
		},
	}}
}

// periodic reports whether all consecutive intervals of buf are equal.
// Timestamps are compared at the storage precision of one microsecond.
func periodic(buf []models.Event) bool {
	if len(buf) < 3 {
		return len(buf) == 2
	}
	step := buf[1].Timestamp.UnixMicro() - buf[0].Timestamp.UnixMicro()
	for i := 2; i < len(buf); i++ {
		if buf[i].Timestamp.UnixMicro()-buf[i-1].Timestamp.UnixMicro() != step {
			return false
		}
	}
	return true
}
