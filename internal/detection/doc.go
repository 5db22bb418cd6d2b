// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Package detection implements the watermark-driven anomaly detection engine.
//
// Architecture:
//
//	Scheduler / API -> Runner -> PassStore.ListAfter
//	                      |
//	                      v
//	     BruteForce -> Flood -> BotActivity   (pure folds over one ordered slice)
//	                      |
//	                      v
//	       PassStore.CommitPass (anomalies + watermark, one transaction)
//	                      |
//	                      v
//	                  Notifiers
//
// Every detector shares one sliding-window state machine. A WindowState
// value carries the buffered events, whether the window is armed and when
// the trigger last held. Detectors never keep state between calls: the
// runner threads the state through Scan and, when configured, persists it
// between scheduled passes.
//
// Per qualifying event a detector:
//
//  1. appends the event to the buffer
//  2. while idle, evicts events older than the window
//  3. while armed, emits one anomaly once the gap since the last trigger
//     exceeds the grouping tolerance, then starts a new window at the event
//  4. re-evaluates its trigger and arms when it holds
//
// Windows still armed when the input ends are not reported.
//
// The Runner guarantees that at most one pass is in flight. Scheduled
// triggers that collide with a running pass are queued (at most one) or
// dropped, depending on OverlapPolicy; explicit-range passes are rejected
// with ErrPassInProgress.
package detection
