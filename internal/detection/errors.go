// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import "errors"

var (
	// ErrPassInProgress is returned when a pass is requested while another
	// pass holds the single-flight guard.
	ErrPassInProgress = errors.New("analysis pass already in progress")

	// ErrStorageUnavailable wraps every failure of the pass store. The
	// watermark is left untouched when it is returned.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrOutOfOrder is returned by a detector fed an event older than the
	// one before it.
	ErrOutOfOrder = errors.New("events out of timestamp order")

	// ErrInvalidRange is returned when an explicit range has from after to.
	ErrInvalidRange = errors.New("invalid analysis range")
)
