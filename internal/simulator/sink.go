// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package simulator

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/horus/internal/ingest"
	"github.com/tomtom215/horus/internal/models"
)

// Sink receives generated batches.
type Sink interface {
	Write(ctx context.Context, events []models.Event) error
	Close() error
}

// Output formats for WriterSink.
const (
	FormatJSON     = "json"     // one JSON object per line
	FormatCombined = "combined" // extended combined log lines
)

// WriterSink writes batches to an io.Writer.
type WriterSink struct {
	w      *bufio.Writer
	enc    *json.Encoder
	format string
}

// NewWriterSink returns a sink writing format to w.
func NewWriterSink(w io.Writer, format string) (*WriterSink, error) {
	if format != FormatJSON && format != FormatCombined {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	bw := bufio.NewWriter(w)
	return &WriterSink{w: bw, enc: json.NewEncoder(bw), format: format}, nil
}

// Write implements Sink. Output is flushed after every batch.
func (s *WriterSink) Write(_ context.Context, events []models.Event) error {
	for i := range events {
		var err error
		if s.format == FormatJSON {
			err = s.enc.Encode(&events[i])
		} else {
			msg := events[i].Message
			if msg == "" {
				msg = events[i].FormatMessage()
			}
			_, err = s.w.WriteString(msg + "\n")
		}
		if err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	return s.w.Flush()
}

// Close flushes buffered output.
func (s *WriterSink) Close() error {
	return s.w.Flush()
}

// ErrRejected is returned when the ingest endpoint answers with a non-2xx
// status.
var ErrRejected = errors.New("ingest endpoint rejected batch")

// HTTPSink posts batches as JSON arrays to a Horus ingest endpoint. After
// repeated failures the breaker opens and batches fail fast until the
// endpoint recovers.
type HTTPSink struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[int]
}

// NewHTTPSink returns a sink posting to url, e.g.
// http://localhost:8080/api/v1/log.
func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
			Name:    "loggen-ingest",
			Timeout: 15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Write implements Sink.
func (s *HTTPSink) Write(ctx context.Context, events []models.Event) error {
	body, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	_, err = s.breaker.Execute(func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		}
		return resp.StatusCode, nil
	})
	return err
}

// Close implements Sink.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// PublisherSink publishes batches straight onto the ingest bus, bypassing
// the HTTP API. Events get their ID here because no ingest endpoint does it.
type PublisherSink struct {
	pub   message.Publisher
	topic string
}

// NewPublisherSink returns a sink publishing ingest.Batch messages to topic.
func NewPublisherSink(pub message.Publisher, topic string) *PublisherSink {
	return &PublisherSink{pub: pub, topic: topic}
}

// Write implements Sink.
func (s *PublisherSink) Write(_ context.Context, events []models.Event) error {
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.New().String()
		}
		events[i].Timestamp = events[i].Timestamp.UTC()
	}
	payload, err := json.Marshal(ingest.Batch{Events: events})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	return s.pub.Publish(s.topic, message.NewMessage(watermill.NewUUID(), payload))
}

// Close closes the publisher.
func (s *PublisherSink) Close() error {
	return s.pub.Close()
}
