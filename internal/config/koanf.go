// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/horus/config.yaml",
	"/etc/horus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                    "/data/horus.duckdb",
			MaxMemory:               "1GB",
			Threads:                 0,
			PreserveInsertionOrder:  true,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
			BreakerMaxRequests:      1,
		},
		Analysis: AnalysisConfig{
			Interval:         30 * time.Second,
			RunOnStart:       true,
			OverlapPolicy:    "queue",
			MaxEventsPerPass: 50000,
			MaxPassDuration:  5 * time.Minute,
			SettleDelay:      0,
			CarryOpenWindows: false,
		},
		Detection: DetectionConfig{
			BruteForce: BruteForceConfig{
				Window:        8 * time.Second,
				Tolerance:     5 * time.Second,
				MinHits:       10,
				LoginEndpoint: "/login",
			},
			Flood: FloodConfig{
				Window:    2 * time.Second,
				Tolerance: 3 * time.Second,
				MinHits:   10,
				MinBytes:  50000,
			},
			Bot: BotConfig{
				Window:    10 * time.Second,
				Tolerance: 10 * time.Second,
				MinHits:   5,
				UserAgent: "BotAgent/1.0",
			},
		},
		Ingest: IngestConfig{
			Topic:            "horus.events",
			WALEnabled:       true,
			WALPath:          "/data/wal",
			RecoveryInterval: 30 * time.Second,
			MaxBodyBytes:     10 << 20, // 10MB
			CloseTimeout:     30 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/nats/jetstream",
			MaxMemory:      256 << 20,
			MaxStore:       1 << 30,
			DurableName:    "horus-ingest",
			QueueGroup:     "ingest",
		},
		Webhook: WebhookConfig{
			Enabled:   false,
			URL:       "",
			RateLimit: 500 * time.Millisecond,
			Timeout:   10 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 1000,
			MaxPageSize:     10000,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// HTTP_PORT -> server.port, BRUTE_FORCE_MIN_HITS -> detection.brute_force.min_hits
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"duckdb_path":             "database.path",
	"duckdb_max_memory":       "database.max_memory",
	"duckdb_threads":          "database.threads",
	"db_breaker_threshold":    "database.breaker_failure_threshold",
	"db_breaker_timeout":      "database.breaker_timeout",
	"db_breaker_max_requests": "database.breaker_max_requests",

	// Analysis
	"analysis_interval":           "analysis.interval",
	"analysis_run_on_start":       "analysis.run_on_start",
	"analysis_overlap_policy":     "analysis.overlap_policy",
	"analysis_max_events":         "analysis.max_events_per_pass",
	"analysis_max_duration":       "analysis.max_pass_duration",
	"analysis_settle_delay":       "analysis.settle_delay",
	"analysis_carry_open_windows": "analysis.carry_open_windows",

	// Detectors
	"brute_force_window":         "detection.brute_force.window",
	"brute_force_tolerance":      "detection.brute_force.tolerance",
	"brute_force_min_hits":       "detection.brute_force.min_hits",
	"brute_force_login_endpoint": "detection.brute_force.login_endpoint",
	"flood_window":               "detection.flood.window",
	"flood_tolerance":            "detection.flood.tolerance",
	"flood_min_hits":             "detection.flood.min_hits",
	"flood_min_bytes":            "detection.flood.min_bytes",
	"bot_window":                 "detection.bot.window",
	"bot_tolerance":              "detection.bot.tolerance",
	"bot_min_hits":               "detection.bot.min_hits",
	"bot_user_agent":             "detection.bot.user_agent",

	// Ingest
	"ingest_topic":             "ingest.topic",
	"ingest_wal_enabled":       "ingest.wal_enabled",
	"ingest_wal_path":          "ingest.wal_path",
	"ingest_recovery_interval": "ingest.recovery_interval",
	"ingest_max_body_bytes":    "ingest.max_body_bytes",

	// NATS
	"nats_enabled":     "nats.enabled",
	"nats_url":         "nats.url",
	"nats_embedded":    "nats.embedded_server",
	"nats_store_dir":   "nats.store_dir",
	"nats_max_memory":  "nats.max_memory",
	"nats_max_store":   "nats.max_store",
	"nats_durable":     "nats.durable_name",
	"nats_queue_group": "nats.queue_group",

	// Webhook
	"webhook_enabled":    "webhook.enabled",
	"webhook_url":        "webhook.url",
	"webhook_rate_limit": "webhook.rate_limit",
	"webhook_timeout":    "webhook.timeout",

	// API
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return an empty key and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
