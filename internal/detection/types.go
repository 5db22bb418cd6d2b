// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import (
	"context"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

// Detector recognises one traffic pattern in an ordered event slice.
//
// Scan is a pure fold: it never mutates state or events and returns the
// state to pass into the next call together with the anomalies of every
// window that closed during this call.
type Detector interface {
	Kind() models.AnomalyKind
	Scan(state WindowState, events []models.Event) (WindowState, []models.Anomaly, error)
}

// WindowState is the explicit state of the sliding-window state machine.
// The zero value is an idle detector with an empty buffer.
type WindowState struct {
	Attempts    []models.Event `json:"attempts,omitempty"`
	Armed       bool           `json:"armed"`
	LastTrigger time.Time      `json:"last_trigger,omitempty"`
	LastSeen    time.Time      `json:"last_seen,omitempty"` // timestamp of the last event scanned, qualifying or not
}

// Idle reports whether the state is the initial one.
func (s *WindowState) Idle() bool {
	return !s.Armed && len(s.Attempts) == 0
}

func (s *WindowState) clone() WindowState {
	c := *s
	c.Attempts = nil
	if len(s.Attempts) > 0 {
		c.Attempts = make([]models.Event, len(s.Attempts))
		copy(c.Attempts, s.Attempts)
	}
	return c
}

// PassStore is the storage the Runner needs. It is satisfied by
// database.DB and by database.ResilientStore.
type PassStore interface {
	// ListAfter returns events with after < ts < before in ascending order,
	// at most limit of them when limit > 0.
	ListAfter(ctx context.Context, after, before time.Time, limit int) ([]models.Event, error)

	// GetWatermark returns nil when the key has never been written.
	GetWatermark(ctx context.Context, key string) (*models.Watermark, error)

	// CommitPass applies anomalies, watermark and detector states in one
	// transaction and returns the anomalies that were not already stored.
	CommitPass(ctx context.Context, commit *models.PassCommit) ([]models.Anomaly, error)

	// LoadDetectorStates returns the serialized states saved by CommitPass.
	LoadDetectorStates(ctx context.Context) (map[models.AnomalyKind][]byte, error)
}

// Notifier delivers newly committed anomalies to an external channel.
type Notifier interface {
	Name() string
	Enabled() bool
	Notify(ctx context.Context, anomalies []models.Anomaly) error
}

// BruteForceConfig parameterises the brute-force detector.
type BruteForceConfig struct {
	Window        time.Duration
	Tolerance     time.Duration
	MinHits       int
	LoginEndpoint string
}

// FloodConfig parameterises the volumetric flood detector.
type FloodConfig struct {
	Window    time.Duration
	Tolerance time.Duration
	MinHits   int
	MinBytes  int64
}

// BotConfig parameterises the periodic bot detector.
type BotConfig struct {
	Window    time.Duration
	Tolerance time.Duration
	MinHits   int
	UserAgent string
}

// DefaultBruteForceConfig returns the production brute-force parameters.
func DefaultBruteForceConfig() BruteForceConfig {
	return BruteForceConfig{
		Window:        8 * time.Second,
		Tolerance:     5 * time.Second,
		MinHits:       10,
		LoginEndpoint: "/login",
	}
}

// DefaultFloodConfig returns the production flood parameters.
func DefaultFloodConfig() FloodConfig {
	return FloodConfig{
		Window:    2 * time.Second,
		Tolerance: 3 * time.Second,
		MinHits:   10,
		MinBytes:  50000,
	}
}

// DefaultBotConfig returns the production bot parameters.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		Window:    10 * time.Second,
		Tolerance: 10 * time.Second,
		MinHits:   5,
		UserAgent: "BotAgent/1.0",
	}
}
