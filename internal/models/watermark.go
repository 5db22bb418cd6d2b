// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package models

import "time"

// WatermarkKey is the key of the singleton analysis watermark.
const WatermarkKey = "last_analyzed"

// Watermark records the timestamp through which events have been analysed.
type Watermark struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Epoch is the watermark value used before the first pass.
var Epoch = time.Unix(0, 0).UTC()
