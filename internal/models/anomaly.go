// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AnomalyKind labels the pattern a detector recognised.
type AnomalyKind string

const (
	KindBruteForce AnomalyKind = "Brute-force"
	KindDDoS       AnomalyKind = "DDoS"
	KindBot        AnomalyKind = "Bot"
)

// Valid reports whether k is a known kind.
func (k AnomalyKind) Valid() bool {
	switch k {
	case KindBruteForce, KindDDoS, KindBot:
		return true
	}
	return false
}

// Severity is a coarse label attached to every anomaly.
type Severity string

const (
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// anomalyNamespace scopes the name-based UUIDs of anomalies.
var anomalyNamespace = uuid.MustParse("5f6b8f3e-2c1d-4b7a-9e0f-6a1d2c3b4e5f")

// Anomaly summarises one closed detection window.
type Anomaly struct {
	ID            string      `json:"id"`
	From          time.Time   `json:"timestamp_from"`
	To            time.Time   `json:"timestamp_to"`
	Endpoint      string      `json:"endpoint"`
	Hits          int         `json:"number_of_hits"`
	Severity      Severity    `json:"level"`
	Kind          AnomalyKind `json:"anomaly_type"`
	BytesSent     int64       `json:"body_bytes_sent"`
	RequestLength int64       `json:"request_length"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AnomalyID derives a stable identifier from the fields that define a
// window, so re-detecting the same window yields the same ID.
func AnomalyID(kind AnomalyKind, from, to time.Time, endpoint string) string {
	name := string(kind) + "|" +
		strconv.FormatInt(from.UTC().UnixMicro(), 10) + "|" +
		strconv.FormatInt(to.UTC().UnixMicro(), 10) + "|" +
		endpoint
	return uuid.NewSHA1(anomalyNamespace, []byte(name)).String()
}

// AnomalyFilter narrows an anomaly listing. An anomaly matches when
// From < anomaly.From and anomaly.To < To.
type AnomalyFilter struct {
	From  *time.Time
	To    *time.Time
	Kind  AnomalyKind
	Limit int
}
