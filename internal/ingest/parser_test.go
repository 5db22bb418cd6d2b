// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

func TestParseLine_RoundTripsFormatMessage(t *testing.T) {
	t.Parallel()

	want := models.Event{
		SourceIP:      "203.0.113.7",
		User:          "alice",
		Timestamp:     time.Date(2026, 3, 1, 12, 30, 45, 123000000, time.UTC),
		Method:        "POST",
		Endpoint:      "/login?next=/home",
		Protocol:      "HTTP/1.1",
		StatusCode:    401,
		BytesSent:     512,
		Referer:       "https://example.com/",
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64)",
		RequestLength: 230,
	}
	line := want.FormatMessage()

	got, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine(%q) error: %v", line, err)
	}

	if !got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
	got.Timestamp = want.Timestamp
	want.Message = line
	if got != want {
		t.Errorf("ParseLine() = %+v, want %+v", got, want)
	}
}

func TestParseLine_AnonymousEmptyFields(t *testing.T) {
	t.Parallel()

	e := models.Event{
		SourceIP:   "10.0.0.1",
		Timestamp:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Method:     "GET",
		Endpoint:   "/",
		StatusCode: 200,
	}
	got, err := ParseLine(e.FormatMessage())
	if err != nil {
		t.Fatalf("ParseLine() error: %v", err)
	}
	if got.User != "" {
		t.Errorf("User = %q, want empty", got.User)
	}
	if got.Referer != "" {
		t.Errorf("Referer = %q, want empty", got.Referer)
	}
	if got.Protocol != "" {
		t.Errorf("Protocol = %q, want empty", got.Protocol)
	}
	if got.UserAgent != "" {
		t.Errorf("UserAgent = %q, want empty", got.UserAgent)
	}
}

func TestParseLine_ApacheCombined(t *testing.T) {
	t.Parallel()

	line := `192.168.1.20 - - [10/Oct/2025:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 - "http://www.example.com/start.html" "Mozilla/4.08"`

	got, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine() error: %v", err)
	}

	wantTS := time.Date(2025, 10, 10, 20, 55, 36, 0, time.UTC)
	if !got.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, wantTS)
	}
	if got.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", got.Timestamp.Location())
	}
	if got.BytesSent != 0 {
		t.Errorf("BytesSent = %d, want 0 for '-'", got.BytesSent)
	}
	if got.RequestLength != 0 {
		t.Errorf("RequestLength = %d, want 0 when absent", got.RequestLength)
	}
	if got.Endpoint != "/apache_pb.gif" || got.Method != "GET" || got.Protocol != "HTTP/1.0" {
		t.Errorf("request = %s %s %s", got.Method, got.Endpoint, got.Protocol)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"garbage", "this is not a log line"},
		{"missing quotes", `1.2.3.4 - - [10/Oct/2025:13:55:36 -0700] GET / HTTP/1.1 200 10 "-" "ua"`},
		{"bad status", `1.2.3.4 - - [10/Oct/2025:13:55:36 -0700] "GET / HTTP/1.1" 20 10 "-" "ua"`},
		{"bad timestamp", `1.2.3.4 - - [yesterday] "GET / HTTP/1.1" 200 10 "-" "ua"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLine(tt.line)
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("ParseLine(%q) error = %v, want ErrMalformedLine", tt.line, err)
			}
		})
	}
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var b strings.Builder
	for i := 0; i < 3; i++ {
		e := models.Event{
			SourceIP:   "10.0.0.1",
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Method:     "GET",
			Endpoint:   "/",
			Protocol:   "HTTP/1.1",
			StatusCode: 200,
		}
		b.WriteString(e.FormatMessage())
		b.WriteString("\n\n")
	}

	events, err := ParseLines(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseLines() error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	for i, e := range events {
		if want := base.Add(time.Duration(i) * time.Second); !e.Timestamp.Equal(want) {
			t.Errorf("events[%d].Timestamp = %v, want %v", i, e.Timestamp, want)
		}
	}
}

func TestParseLines_ReportsLineNumber(t *testing.T) {
	t.Parallel()

	e := models.Event{
		SourceIP:   "10.0.0.1",
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Method:     "GET",
		Endpoint:   "/",
		StatusCode: 200,
	}
	input := e.FormatMessage() + "\n" + e.FormatMessage() + "\nnot a log line\n"

	_, err := ParseLines(strings.NewReader(input))
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("ParseLines() error = %v, want ErrMalformedLine", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name line 3", err)
	}
}
