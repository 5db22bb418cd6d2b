// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Analysis.Interval != 30*time.Second {
		t.Errorf("Analysis.Interval = %v, want 30s", cfg.Analysis.Interval)
	}
	if cfg.Analysis.OverlapPolicy != "queue" {
		t.Errorf("Analysis.OverlapPolicy = %q, want queue", cfg.Analysis.OverlapPolicy)
	}
	if cfg.Analysis.CarryOpenWindows {
		t.Error("Analysis.CarryOpenWindows should be false by default")
	}

	bf := cfg.Detection.BruteForce
	if bf.Window != 8*time.Second || bf.Tolerance != 5*time.Second || bf.MinHits != 10 || bf.LoginEndpoint != "/login" {
		t.Errorf("BruteForce defaults = %+v", bf)
	}
	fl := cfg.Detection.Flood
	if fl.Window != 2*time.Second || fl.Tolerance != 3*time.Second || fl.MinHits != 10 || fl.MinBytes != 50000 {
		t.Errorf("Flood defaults = %+v", fl)
	}
	bot := cfg.Detection.Bot
	if bot.Window != 10*time.Second || bot.Tolerance != 10*time.Second || bot.MinHits != 5 || bot.UserAgent != "BotAgent/1.0" {
		t.Errorf("Bot defaults = %+v", bot)
	}

	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be false by default")
	}
	if cfg.API.DefaultPageSize != 1000 || cfg.API.MaxPageSize != 10000 {
		t.Errorf("API page sizes = %d/%d, want 1000/10000", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestEnvTransformFunc verifies the env-name to koanf-path mapping
func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"ANALYSIS_INTERVAL", "analysis.interval"},
		{"ANALYSIS_CARRY_OPEN_WINDOWS", "analysis.carry_open_windows"},
		{"BRUTE_FORCE_MIN_HITS", "detection.brute_force.min_hits"},
		{"FLOOD_MIN_BYTES", "detection.flood.min_bytes"},
		{"BOT_USER_AGENT", "detection.bot.user_agent"},
		{"NATS_URL", "nats.url"},
		{"WEBHOOK_URL", "webhook.url"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if result := envTransformFunc(tt.input); result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// isolateConfig points CONFIG_PATH at path (or at nothing) for one test.
func isolateConfig(t *testing.T, path string) {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "absent.yaml")
	}
	t.Setenv(ConfigPathEnvVar, path)
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateConfig(t, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ANALYSIS_INTERVAL", "45s")
	t.Setenv("ANALYSIS_OVERLAP_POLICY", "drop")
	t.Setenv("BRUTE_FORCE_MIN_HITS", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Analysis.Interval != 45*time.Second {
		t.Errorf("Analysis.Interval = %v, want 45s", cfg.Analysis.Interval)
	}
	if cfg.Analysis.OverlapPolicy != "drop" {
		t.Errorf("Analysis.OverlapPolicy = %q, want drop", cfg.Analysis.OverlapPolicy)
	}
	if cfg.Detection.BruteForce.MinHits != 20 {
		t.Errorf("BruteForce.MinHits = %d, want 20", cfg.Detection.BruteForce.MinHits)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Detection.Flood.MinBytes != 50000 {
		t.Errorf("Flood.MinBytes = %d, want 50000 (default)", cfg.Detection.Flood.MinBytes)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

analysis:
  interval: 1m
  carry_open_windows: true

detection:
  bot:
    user_agent: "CrawlerX/2.0"

webhook:
  enabled: true
  url: "https://hooks.example.com/horus"
  headers:
    Authorization: "Bearer abc"

logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	isolateConfig(t, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Analysis.Interval != time.Minute || !cfg.Analysis.CarryOpenWindows {
		t.Errorf("Analysis = %+v", cfg.Analysis)
	}
	if cfg.Detection.Bot.UserAgent != "CrawlerX/2.0" {
		t.Errorf("Bot.UserAgent = %q", cfg.Detection.Bot.UserAgent)
	}
	if cfg.Detection.Bot.MinHits != 5 {
		t.Errorf("Bot.MinHits = %d, want 5 (default)", cfg.Detection.Bot.MinHits)
	}
	if !cfg.Webhook.Enabled || cfg.Webhook.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("Webhook = %+v", cfg.Webhook)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/data/horus.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	configContent := `
server:
  port: 8888
logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	isolateConfig(t, configPath)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("DUCKDB_PATH", "/custom/db.duckdb")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/custom/db.duckdb" {
		t.Errorf("Database.Path = %q, want /custom/db.duckdb", cfg.Database.Path)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		errMsg  string
	}{
		{"invalid port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"unknown overlap policy", map[string]string{"ANALYSIS_OVERLAP_POLICY": "wait"}, "ANALYSIS_OVERLAP_POLICY"},
		{"interval too short", map[string]string{"ANALYSIS_INTERVAL": "100ms"}, "ANALYSIS_INTERVAL"},
		{"zero min hits", map[string]string{"FLOOD_MIN_HITS": "0"}, "min_hits"},
		{"webhook without URL", map[string]string{"WEBHOOK_ENABLED": "true"}, "WEBHOOK_URL"},
		{"bad NATS URL", map[string]string{"NATS_ENABLED": "true", "NATS_URL": "http://nats:4222"}, "NATS_URL"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}, "RATE_LIMIT_REQUESTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t, "")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want it to mention %s", err, tt.errMsg)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(customPath, []byte("server:\n  port: 1234\n"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, customPath)
	if got := findConfigFile(); got != customPath {
		t.Errorf("findConfigFile() = %q, want %q", got, customPath)
	}
}

func TestIsProduction(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production")
	}
}
