// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

//go:build !nats

package ingest

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/horus/internal/config"
)

// NATSAvailable reports whether this binary was built with NATS support.
const NATSAvailable = false

// ErrNATSNotCompiled is returned when NATS is configured but the binary was
// built without the nats tag.
var ErrNATSNotCompiled = errors.New("NATS support not compiled in (build with -tags nats)")

// NewNATSPublisher is unavailable without the nats build tag.
func NewNATSPublisher(string, watermill.LoggerAdapter) (message.Publisher, error) {
	return nil, ErrNATSNotCompiled
}

func newNATSBus(*config.NATSConfig, watermill.LoggerAdapter) (*Bus, error) {
	return nil, ErrNATSNotCompiled
}
