// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package ingest

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/horus/internal/config"
	"github.com/tomtom215/horus/internal/logging"
)

// Bus is the publish/subscribe transport between the ingest endpoint and
// the consumer that stores events.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Kind       string // "gochannel" or "nats"

	closers []func() error
}

// NewLogger returns a watermill logger writing through the zerolog logger.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// NewLocalBus returns an in-process bus.
func NewLocalBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewLogger()
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
	return &Bus{
		Publisher:  ch,
		Subscriber: ch,
		Kind:       "gochannel",
		closers:    []func() error{ch.Close},
	}
}

// NewBus returns a NATS JetStream bus when cfg.Enabled, otherwise an
// in-process bus. NATS needs a binary built with the nats tag.
func NewBus(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = NewLogger()
	}
	if cfg == nil || !cfg.Enabled {
		return NewLocalBus(logger), nil
	}
	return newNATSBus(cfg, logger)
}

// Close closes the transport in reverse order of construction.
func (b *Bus) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
