// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

// ErrMalformedLine is returned for a line that is not in combined log format.
var ErrMalformedLine = errors.New("malformed log line")

// combinedLogPattern matches
//
//	ip - user [ts] "METHOD endpoint proto" status bytes "referer" "ua" reqlen
//
// The trailing request length is optional so plain Apache/nginx combined
// lines are accepted as well.
var combinedLogPattern = regexp.MustCompile(
	`^(\S+) \S+ (\S+) \[([^\]]+)\] "(\S+) (\S+)(?: ([^"]*))?" (\d{3}) (\d+|-) "([^"]*)" "([^"]*)"(?: (\d+|-))?\s*$`)

// Timestamp layouts tried in order.
var logTimeLayouts = []string{
	models.CombinedLogTimeFormat,
	time.RFC3339Nano,
	"02/Jan/2006:15:04:05 -0700",
}

// ParseLine parses one combined-log line into an Event. The raw line is kept
// in Message.
func ParseLine(line string) (models.Event, error) {
	line = strings.TrimRight(line, "\r\n")
	m := combinedLogPattern.FindStringSubmatch(line)
	if m == nil {
		return models.Event{}, fmt.Errorf("%w: %q", ErrMalformedLine, truncate(line, 120))
	}

	ts, err := parseLogTime(m[3])
	if err != nil {
		return models.Event{}, fmt.Errorf("%w: timestamp %q", ErrMalformedLine, m[3])
	}

	status, _ := strconv.Atoi(m[7]) // \d{3}

	return models.Event{
		SourceIP:      m[1],
		User:          dashToEmpty(m[2]),
		Timestamp:     ts,
		Method:        m[4],
		Endpoint:      m[5],
		Protocol:      m[6],
		StatusCode:    status,
		BytesSent:     parseCount(m[8]),
		Referer:       dashToEmpty(m[9]),
		UserAgent:     m[10],
		RequestLength: parseCount(m[11]),
		Message:       line,
	}, nil
}

// ParseLines parses newline-separated log lines from r, skipping blank lines.
// It stops at the first malformed line and reports its 1-based line number.
func ParseLines(r io.Reader) ([]models.Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		events []models.Event
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log lines: %w", err)
	}
	return events, nil
}

func parseLogTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range logTimeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseCount(s string) int64 {
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
