// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Package simulator generates synthetic access-log traffic with injected
// attack campaigns for demos and fixtures. It is linked into cmd/loggen
// only; the server never imports it.
//
// Each batch holds 40 to 69 normal requests spread over a 30 second window
// plus the traffic of every active campaign. A campaign starts with
// probability 0.15 per batch and stops with its own probability at the
// start of each later batch:
//
//	Campaign             requests  spread   stop
//	DDoS                 50        5s       0.20
//	HighUniqueEndpoints  30        30s      0.30
//	BruteForce           20        6s       0.30
//	LargePost            10        30s      0.30
//	LargeDownload        10        30s      0.50
//	SuspiciousCountry    30        30s      0.30
//	Bot                  15        1/s      0.30
//
// Source addresses come from a GeoLite2 blocks CSV when one is loaded and
// from random public IPv4 space otherwise. A fixed Seed reproduces the same
// batches.
package simulator
