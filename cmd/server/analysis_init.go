// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package main

import (
	"github.com/tomtom215/horus/internal/config"
	"github.com/tomtom215/horus/internal/detection"
	"github.com/tomtom215/horus/internal/logging"
)

// initAnalysis builds the runner with the three detectors configured in cfg
// and registers the webhook notifier when one is enabled.
func initAnalysis(cfg *config.Config, store detection.PassStore) *detection.Runner {
	d := cfg.Detection
	detectors := detection.DefaultDetectors(
		detection.BruteForceConfig{
			Window:        d.BruteForce.Window,
			Tolerance:     d.BruteForce.Tolerance,
			MinHits:       d.BruteForce.MinHits,
			LoginEndpoint: d.BruteForce.LoginEndpoint,
		},
		detection.FloodConfig{
			Window:    d.Flood.Window,
			Tolerance: d.Flood.Tolerance,
			MinHits:   d.Flood.MinHits,
			MinBytes:  d.Flood.MinBytes,
		},
		detection.BotConfig{
			Window:    d.Bot.Window,
			Tolerance: d.Bot.Tolerance,
			MinHits:   d.Bot.MinHits,
			UserAgent: d.Bot.UserAgent,
		},
	)

	runner := detection.NewRunner(store, detection.RunnerConfig{
		MaxEventsPerPass: cfg.Analysis.MaxEventsPerPass,
		MaxPassDuration:  cfg.Analysis.MaxPassDuration,
		SettleDelay:      cfg.Analysis.SettleDelay,
		OverlapPolicy:    detection.OverlapPolicy(cfg.Analysis.OverlapPolicy),
		CarryOpenWindows: cfg.Analysis.CarryOpenWindows,
	}, detectors...)

	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		runner.AddNotifier(detection.NewWebhookNotifier(detection.WebhookConfig{
			WebhookURL:  cfg.Webhook.URL,
			Headers:     cfg.Webhook.Headers,
			Enabled:     true,
			RateLimitMs: int(cfg.Webhook.RateLimit.Milliseconds()),
			Timeout:     cfg.Webhook.Timeout,
		}))
	}

	logging.Info().
		Dur("interval", cfg.Analysis.Interval).
		Str("overlap_policy", cfg.Analysis.OverlapPolicy).
		Bool("carry_open_windows", cfg.Analysis.CarryOpenWindows).
		Int("detectors", len(detectors)).
		Msg("Analysis runner initialized")
	return runner
}
