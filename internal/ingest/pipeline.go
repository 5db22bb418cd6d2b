// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/metrics"
	"github.com/tomtom215/horus/internal/models"
	"github.com/tomtom215/horus/internal/validation"
	"github.com/tomtom215/horus/internal/wal"
)

// metaWALEntry carries the WAL entry ID of a batch through the bus.
const metaWALEntry = "wal_entry_id"

const handlerName = "horus-event-store"

// ErrPublish is returned when a batch could not be handed to the bus and no
// WAL holds it for redelivery.
var ErrPublish = errors.New("ingest publish failed")

// InvalidEventError reports the first event of a batch that failed
// validation. The whole batch is rejected.
type InvalidEventError struct {
	Index int
	Err   *validation.RequestValidationError
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("event %d: %v", e.Index, e.Err)
}

func (e *InvalidEventError) Unwrap() error {
	return e.Err
}

// EventStore receives consumed batches.
type EventStore interface {
	InsertEvents(ctx context.Context, events []models.Event) (int, error)
}

// Config holds pipeline settings.
type Config struct {
	Topic        string
	CloseTimeout time.Duration

	// Retry middleware for the storing handler.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration

	// RecoveryMinAge is how old a pending WAL entry must be before Recover
	// republishes it.
	RecoveryMinAge time.Duration
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Topic:                "horus.events",
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 200 * time.Millisecond,
		RecoveryMinAge:       30 * time.Second,
	}
}

// Batch is the message payload published for one accepted submission.
type Batch struct {
	Events []models.Event `json:"events"`
}

// Pipeline accepts event batches, makes them durable in the WAL, publishes
// them to the bus and stores them from a watermill consumer.
type Pipeline struct {
	cfg    Config
	store  EventStore
	wal    *wal.BadgerWAL
	bus    *Bus
	router *message.Router
	logger watermill.LoggerAdapter
}

// NewPipeline wires the consumer handler into a watermill router. w may be
// nil to run without a WAL.
func NewPipeline(cfg Config, store EventStore, w *wal.BadgerWAL, bus *Bus, logger watermill.LoggerAdapter) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("ingest: store is required")
	}
	if bus == nil {
		return nil, errors.New("ingest: bus is required")
	}
	if logger == nil {
		logger = NewLogger()
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultConfig().Topic
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	// Poisoned batches are acked on the bus; their WAL entry stays pending
	// and Recover redelivers it later.
	poisonQueue, err := middleware.PoisonQueue(bus.Publisher, cfg.Topic+".poison")
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poisonQueue)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     10 * cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	p := &Pipeline{
		cfg:    cfg,
		store:  store,
		wal:    w,
		bus:    bus,
		router: router,
		logger: logger,
	}
	router.AddConsumerHandler(handlerName, cfg.Topic, bus.Subscriber, p.handle)
	return p, nil
}

// Run runs the consumer until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.router.Run(ctx)
}

// Running is closed once the consumer is subscribed.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close stops the router.
func (p *Pipeline) Close() error {
	return p.router.Close()
}

// Submit validates events and publishes them as one batch. Events without
// an ID get one here so that redelivery is idempotent. It returns the number
// of events accepted; a validation failure rejects the whole batch with an
// *InvalidEventError.
func (p *Pipeline) Submit(ctx context.Context, events []models.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	for i := range events {
		if verr := validation.ValidateStruct(&events[i]); verr != nil {
			metrics.IngestEventsTotal.WithLabelValues("invalid").Add(float64(len(events)))
			return 0, &InvalidEventError{Index: i, Err: verr}
		}
		if events[i].ID == "" {
			events[i].ID = uuid.New().String()
		}
		events[i].Timestamp = events[i].Timestamp.UTC()
		if events[i].Message == "" {
			events[i].Message = events[i].FormatMessage()
		}
	}

	batch := Batch{Events: events}
	payload, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("marshal batch: %w", err)
	}

	var entryID string
	if p.wal != nil {
		entryID, err = p.wal.Write(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("write ahead: %w", err)
		}
	}

	if err := p.publish(payload, entryID); err != nil {
		if entryID == "" {
			metrics.IngestEventsTotal.WithLabelValues("failed").Add(float64(len(events)))
			return 0, fmt.Errorf("%w: %w", ErrPublish, err)
		}
		logging.Warn().Err(err).Str("wal_entry_id", entryID).Msg("Ingest publish failed, batch kept in WAL")
	}

	metrics.IngestEventsTotal.WithLabelValues("accepted").Add(float64(len(events)))
	return len(events), nil
}

func (p *Pipeline) publish(payload []byte, entryID string) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if entryID != "" {
		msg.Metadata.Set(metaWALEntry, entryID)
	}
	return p.bus.Publisher.Publish(p.cfg.Topic, msg)
}

// handle stores one batch and confirms its WAL entry.
func (p *Pipeline) handle(msg *message.Message) error {
	ctx := msg.Context()
	entryID := msg.Metadata.Get(metaWALEntry)

	var batch Batch
	if err := json.Unmarshal(msg.Payload, &batch); err != nil {
		// Retrying cannot fix a payload that does not decode.
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable ingest batch")
		metrics.IngestEventsTotal.WithLabelValues("invalid").Inc()
		if entryID != "" && p.wal != nil {
			if err := p.wal.DeleteEntry(ctx, entryID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
				logging.Warn().Err(err).Str("wal_entry_id", entryID).Msg("Failed to delete WAL entry")
			}
		}
		return nil
	}

	inserted, err := p.store.InsertEvents(ctx, batch.Events)
	if err != nil {
		metrics.IngestEventsTotal.WithLabelValues("failed").Add(float64(len(batch.Events)))
		if entryID != "" && p.wal != nil {
			if uerr := p.wal.UpdateAttempt(ctx, entryID, err.Error()); uerr != nil && !errors.Is(uerr, wal.ErrEntryNotFound) {
				logging.Warn().Err(uerr).Str("wal_entry_id", entryID).Msg("Failed to record WAL attempt")
			}
		}
		return fmt.Errorf("store batch: %w", err)
	}

	metrics.IngestEventsTotal.WithLabelValues("stored").Add(float64(inserted))
	if dup := len(batch.Events) - inserted; dup > 0 {
		metrics.IngestEventsTotal.WithLabelValues("duplicate").Add(float64(dup))
	}

	if entryID != "" && p.wal != nil {
		if err := p.wal.Confirm(ctx, entryID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
			// Stored but unconfirmed: recovery will redeliver and the store
			// will skip the duplicates.
			logging.Warn().Err(err).Str("wal_entry_id", entryID).Msg("Failed to confirm WAL entry")
		}
	}

	logging.Trace().Int("events", len(batch.Events)).Int("inserted", inserted).Msg("Ingest batch stored")
	return nil
}

// Recover republishes WAL entries older than RecoveryMinAge and compacts
// confirmed ones. It is a no-op without a WAL.
func (p *Pipeline) Recover(ctx context.Context) (*wal.RecoveryResult, error) {
	if p.wal == nil {
		return &wal.RecoveryResult{}, nil
	}

	result, err := p.wal.RecoverPending(ctx, wal.PublisherFunc(func(_ context.Context, entry *wal.Entry) error {
		return p.publish(entry.Payload, entry.ID)
	}), p.cfg.RecoveryMinAge)
	if err != nil {
		return result, err
	}

	if _, err := p.wal.Compact(); err != nil {
		logging.Warn().Err(err).Msg("WAL compaction failed")
	}
	p.wal.Stats()
	return result, nil
}
