// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package wal

import (
	"time"
)

// Config holds configuration for the ingest write-ahead log.
type Config struct {
	// Path is the BadgerDB directory. Empty keeps the log in memory, which
	// only protects against bus failures, not process crashes.
	Path string

	// SyncWrites enables fsync on every write.
	SyncWrites bool

	// MaxRetries is the number of store attempts before an entry is dropped.
	MaxRetries int

	// EntryTTL is how long a pending entry is kept before it expires.
	EntryTTL time.Duration

	// MemTableSize is the BadgerDB memtable size in bytes.
	MemTableSize int64

	// ValueLogFileSize is the maximum BadgerDB value log file size.
	ValueLogFileSize int64

	// Compression enables Snappy compression of stored entries.
	Compression bool

	// GCRatio is the value log GC discard ratio.
	GCRatio float64

	// CloseTimeout bounds how long Close waits for BadgerDB.
	CloseTimeout time.Duration
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/wal",
		SyncWrites:       true,
		MaxRetries:       100,
		EntryTTL:         168 * time.Hour, // 7 days
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		Compression:      true,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxRetries < 1 {
		return &ConfigError{Field: "MaxRetries", Message: "must be at least 1"}
	}

	if c.EntryTTL < time.Minute {
		return &ConfigError{Field: "EntryTTL", Message: "must be at least 1 minute"}
	}

	if c.MemTableSize < 1024*1024 { // 1MB minimum
		return &ConfigError{Field: "MemTableSize", Message: "must be at least 1MB"}
	}

	if c.ValueLogFileSize < 1024*1024 {
		return &ConfigError{Field: "ValueLogFileSize", Message: "must be at least 1MB"}
	}

	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return &ConfigError{Field: "GCRatio", Message: "must be between 0 and 1"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "WAL config error: " + e.Field + ": " + e.Message
}
