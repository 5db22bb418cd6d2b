// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAnalysis,
		c.validateDetection,
		c.validateIngest,
		c.validateNATS,
		c.validateWebhook,
		c.validateAPI,
		c.validateRateLimits,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	if c.Database.BreakerFailureThreshold == 0 {
		return fmt.Errorf("DB_BREAKER_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.Interval < time.Second {
		return fmt.Errorf("ANALYSIS_INTERVAL must be at least 1s, got %v", a.Interval)
	}
	if a.OverlapPolicy != "queue" && a.OverlapPolicy != "drop" {
		return fmt.Errorf("ANALYSIS_OVERLAP_POLICY must be queue or drop, got %q", a.OverlapPolicy)
	}
	if a.MaxEventsPerPass < 0 {
		return fmt.Errorf("ANALYSIS_MAX_EVENTS must be non-negative")
	}
	if a.MaxPassDuration < 0 || a.SettleDelay < 0 {
		return fmt.Errorf("analysis durations must be non-negative")
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	windows := []struct {
		name              string
		window, tolerance time.Duration
		minHits           int
	}{
		{"brute_force", d.BruteForce.Window, d.BruteForce.Tolerance, d.BruteForce.MinHits},
		{"flood", d.Flood.Window, d.Flood.Tolerance, d.Flood.MinHits},
		{"bot", d.Bot.Window, d.Bot.Tolerance, d.Bot.MinHits},
	}
	for _, w := range windows {
		if w.window <= 0 || w.tolerance <= 0 {
			return fmt.Errorf("detection.%s window and tolerance must be positive", w.name)
		}
		if w.minHits < 1 {
			return fmt.Errorf("detection.%s.min_hits must be at least 1", w.name)
		}
	}
	if d.Bot.MinHits < 2 {
		return fmt.Errorf("detection.bot.min_hits must be at least 2 to measure an interval")
	}
	if d.BruteForce.LoginEndpoint == "" {
		return fmt.Errorf("BRUTE_FORCE_LOGIN_ENDPOINT is required")
	}
	if d.Bot.UserAgent == "" {
		return fmt.Errorf("BOT_USER_AGENT is required")
	}
	if d.Flood.MinBytes < 0 {
		return fmt.Errorf("FLOOD_MIN_BYTES must be non-negative")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.Topic == "" {
		return fmt.Errorf("INGEST_TOPIC is required")
	}
	if c.Ingest.WALEnabled && c.Ingest.RecoveryInterval <= 0 {
		return fmt.Errorf("INGEST_RECOVERY_INTERVAL must be positive when the WAL is enabled")
	}
	if c.Ingest.MaxBodyBytes <= 0 {
		return fmt.Errorf("INGEST_MAX_BODY_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if !c.Webhook.Enabled {
		return nil
	}
	if c.Webhook.URL == "" {
		return fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_ENABLED=true")
	}
	parsed, err := url.Parse(c.Webhook.URL)
	if err != nil {
		return fmt.Errorf("WEBHOOK_URL failed to parse: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("WEBHOOK_URL scheme must be http or https, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("WEBHOOK_URL host is required")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API page sizes must satisfy 1 <= default <= max")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, off")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// validateNATSURL validates that the NATS URL is properly formatted
// Supports: nats://, tls://, and ws:// schemes with IP addresses/hostnames and optional ports
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}

	return nil
}
