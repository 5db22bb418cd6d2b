// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Package models defines the records shared by storage, detection, ingestion
// and the HTTP API: access-log events, detected anomalies and the analysis
// watermark.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingRequiredField is returned when an event lacks a field the
// detectors depend on. It aborts an analysis pass.
var ErrMissingRequiredField = errors.New("missing required field")

// Event is one HTTP access-log entry. Events are immutable once stored.
type Event struct {
	ID            string    `json:"id"`
	SourceIP      string    `json:"source_ip" validate:"required,ip"`
	User          string    `json:"user,omitempty"` // empty when the request was anonymous
	Timestamp     time.Time `json:"timestamp" validate:"required"`
	Method        string    `json:"method" validate:"required,http_method"`
	Endpoint      string    `json:"endpoint" validate:"required,max=2048"`
	Protocol      string    `json:"protocol" validate:"max=10"`
	StatusCode    int       `json:"status_code" validate:"required,min=100,max=599"`
	BytesSent     int64     `json:"bytes_sent" validate:"min=0"`
	Referer       string    `json:"referer,omitempty"`
	UserAgent     string    `json:"user_agent" validate:"max=512"`
	RequestLength int64     `json:"request_length" validate:"min=0"`
	Message       string    `json:"message,omitempty"` // raw combined-log line
}

// Validate checks the fields the detectors need.
func (e *Event) Validate() error {
	switch {
	case e.Timestamp.IsZero():
		return fmt.Errorf("event %s: timestamp: %w", e.ID, ErrMissingRequiredField)
	case e.Endpoint == "":
		return fmt.Errorf("event %s: endpoint: %w", e.ID, ErrMissingRequiredField)
	case e.Method == "":
		return fmt.Errorf("event %s: method: %w", e.ID, ErrMissingRequiredField)
	case e.StatusCode == 0:
		return fmt.Errorf("event %s: status_code: %w", e.ID, ErrMissingRequiredField)
	}
	return nil
}

// CombinedLogTimeFormat is the timestamp layout used inside the brackets of
// a rendered log line.
const CombinedLogTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatMessage renders the event in the extended combined log format:
//
//	ip - user [ts] "METHOD endpoint proto" status bytes "referer" "ua" reqlen
func (e *Event) FormatMessage() string {
	var b strings.Builder
	b.WriteString(e.SourceIP)
	b.WriteString(" - ")
	b.WriteString(orDash(e.User))
	b.WriteString(" [")
	b.WriteString(e.Timestamp.UTC().Format(CombinedLogTimeFormat))
	b.WriteString(`] "`)
	b.WriteString(e.Method)
	b.WriteByte(' ')
	b.WriteString(e.Endpoint)
	b.WriteByte(' ')
	b.WriteString(e.Protocol)
	b.WriteString(`" `)
	b.WriteString(strconv.Itoa(e.StatusCode))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(e.BytesSent, 10))
	b.WriteString(` "`)
	b.WriteString(orDash(e.Referer))
	b.WriteString(`" "`)
	b.WriteString(e.UserAgent)
	b.WriteString(`" `)
	b.WriteString(strconv.FormatInt(e.RequestLength, 10))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// EventFilter narrows an event listing. Both bounds are exclusive and
// optional.
type EventFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
