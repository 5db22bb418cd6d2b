// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import (
	"fmt"
	"time"

	"github.com/tomtom215/horus/internal/models"
)

// windowDetector is the state machine shared by all detectors. Concrete
// detectors supply the qualifying filter and the trigger condition.
type windowDetector struct {
	kind      models.AnomalyKind
	severity  models.Severity
	window    time.Duration
	tolerance time.Duration
	qualifies func(e *models.Event) bool
	triggered func(buf []models.Event) bool
}

// Kind implements Detector.
func (d *windowDetector) Kind() models.AnomalyKind {
	return d.kind
}

// Scan implements Detector.
func (d *windowDetector) Scan(state WindowState, events []models.Event) (WindowState, []models.Anomaly, error) {
	st := state.clone()
	var found []models.Anomaly

	for i := range events {
		ev := &events[i]
		if !st.LastSeen.IsZero() && ev.Timestamp.Before(st.LastSeen) {
			return state, nil, fmt.Errorf("%s: event %q at %s follows %s: %w",
				d.kind, ev.ID, ev.Timestamp.Format(time.RFC3339Nano),
				st.LastSeen.Format(time.RFC3339Nano), ErrOutOfOrder)
		}
		st.LastSeen = ev.Timestamp

		if !d.qualifies(ev) {
			continue
		}

		st.Attempts = append(st.Attempts, *ev)

		if !st.Armed {
			st.evictBefore(ev.Timestamp.Add(-d.window))
		}

		if st.Armed && ev.Timestamp.Sub(st.LastTrigger) > d.tolerance {
			// The closing event names the endpoint but is not counted, and
			// the next window starts from an empty buffer.
			found = append(found, d.summarize(st.Attempts[:len(st.Attempts)-1], ev))
			st.Attempts = nil
			st.Armed = false
			st.LastTrigger = time.Time{}
		}

		if d.triggered(st.Attempts) {
			st.Armed = true
			st.LastTrigger = ev.Timestamp
		}
	}

	return st, found, nil
}

// evictBefore drops buffered events strictly older than cutoff. The buffer
// is ordered, so only a prefix can be stale.
func (s *WindowState) evictBefore(cutoff time.Time) {
	n := 0
	for n < len(s.Attempts) && s.Attempts[n].Timestamp.Before(cutoff) {
		n++
	}
	if n == 0 {
		return
	}
	kept := copy(s.Attempts, s.Attempts[n:])
	clear(s.Attempts[kept:])
	s.Attempts = s.Attempts[:kept]
}

func (d *windowDetector) summarize(window []models.Event, closing *models.Event) models.Anomaly {
	first, last := window[0], window[len(window)-1]

	var bytesSent, requestLength int64
	for i := range window {
		bytesSent += window[i].BytesSent
		requestLength += window[i].RequestLength
	}

	return models.Anomaly{
		ID:            models.AnomalyID(d.kind, first.Timestamp, last.Timestamp, closing.Endpoint),
		From:          first.Timestamp,
		To:            last.Timestamp,
		Endpoint:      closing.Endpoint,
		Hits:          len(window),
		Severity:      d.severity,
		Kind:          d.kind,
		BytesSent:     bytesSent,
		RequestLength: requestLength,
	}
}
