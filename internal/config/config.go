// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Detection DetectionConfig `koanf:"detection"`
	Ingest    IngestConfig    `koanf:"ingest"`
	NATS      NATSConfig      `koanf:"nats"`
	Webhook   WebhookConfig   `koanf:"webhook"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"` // ":memory:" for an in-process database
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`

	// Circuit breaker around storage calls made by analysis passes.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
}

// AnalysisConfig controls when and how analysis passes run
type AnalysisConfig struct {
	Interval         time.Duration `koanf:"interval"`
	RunOnStart       bool          `koanf:"run_on_start"`
	OverlapPolicy    string        `koanf:"overlap_policy"` // queue or drop
	MaxEventsPerPass int           `koanf:"max_events_per_pass"`
	MaxPassDuration  time.Duration `koanf:"max_pass_duration"`
	SettleDelay      time.Duration `koanf:"settle_delay"`
	CarryOpenWindows bool          `koanf:"carry_open_windows"`
}

// DetectionConfig holds the parameters of every detector
type DetectionConfig struct {
	BruteForce BruteForceConfig `koanf:"brute_force"`
	Flood      FloodConfig      `koanf:"flood"`
	Bot        BotConfig        `koanf:"bot"`
}

// BruteForceConfig parameterises the brute-force detector
type BruteForceConfig struct {
	Window        time.Duration `koanf:"window"`
	Tolerance     time.Duration `koanf:"tolerance"`
	MinHits       int           `koanf:"min_hits"`
	LoginEndpoint string        `koanf:"login_endpoint"`
}

// FloodConfig parameterises the volumetric flood detector
type FloodConfig struct {
	Window    time.Duration `koanf:"window"`
	Tolerance time.Duration `koanf:"tolerance"`
	MinHits   int           `koanf:"min_hits"`
	MinBytes  int64         `koanf:"min_bytes"`
}

// BotConfig parameterises the periodic bot detector
type BotConfig struct {
	Window    time.Duration `koanf:"window"`
	Tolerance time.Duration `koanf:"tolerance"`
	MinHits   int           `koanf:"min_hits"`
	UserAgent string        `koanf:"user_agent"`
}

// IngestConfig holds event ingestion settings
type IngestConfig struct {
	Topic            string        `koanf:"topic"`
	WALEnabled       bool          `koanf:"wal_enabled"`
	WALPath          string        `koanf:"wal_path"` // empty keeps the WAL in memory
	RecoveryInterval time.Duration `koanf:"recovery_interval"`
	MaxBodyBytes     int64         `koanf:"max_body_bytes"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`
}

// NATSConfig holds the optional NATS JetStream transport settings.
// Only used by binaries built with the nats tag.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`
	DurableName    string `koanf:"durable_name"`
	QueueGroup     string `koanf:"queue_group"`
}

// WebhookConfig holds anomaly notification settings
type WebhookConfig struct {
	Enabled   bool              `koanf:"enabled"`
	URL       string            `koanf:"url"`
	Headers   map[string]string `koanf:"headers"`
	RateLimit time.Duration     `koanf:"rate_limit"`
	Timeout   time.Duration     `koanf:"timeout"`
}

// APIConfig holds API pagination settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds the HTTP hardening settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
