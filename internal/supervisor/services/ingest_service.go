// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package services

import (
	"context"
	"errors"
	"fmt"
)

// IngestConsumer is the part of *ingest.Pipeline the service drives.
type IngestConsumer interface {
	// Run blocks until ctx is cancelled or the router fails.
	Run(ctx context.Context) error
	Close() error
}

// IngestConsumerService runs the watermill router that moves accepted
// batches from the bus into the event store.
type IngestConsumerService struct {
	consumer IngestConsumer
	name     string
}

// NewIngestConsumerService wraps consumer.
func NewIngestConsumerService(consumer IngestConsumer) *IngestConsumerService {
	return &IngestConsumerService{
		consumer: consumer,
		name:     "ingest-consumer",
	}
}

// Serve implements suture.Service.
func (s *IngestConsumerService) Serve(ctx context.Context) error {
	err := s.consumer.Run(ctx)
	if ctx.Err() != nil {
		// The router closes itself on cancellation; Close is idempotent.
		_ = s.consumer.Close()
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("ingest consumer failed: %w", err)
	}
	return errors.New("ingest consumer stopped unexpectedly")
}

// String implements fmt.Stringer.
func (s *IngestConsumerService) String() string {
	return s.name
}
