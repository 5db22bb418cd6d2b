// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Package wal provides the BadgerDB write-ahead log used by ingestion.
//
// Every accepted batch is written to the WAL before it is published to the
// ingest bus, and confirmed only after the consumer has stored it:
//
//	Batch -> WAL Write -> Publish -> Consumer stores -> WAL Confirm
//	                                      | (failure)
//	                             entry stays pending
//
// RecoverPending re-publishes entries that stayed pending (startup after a
// crash, bus outage, storage outage); Compact removes confirmed entries.
// An empty Config.Path runs BadgerDB in memory.
package wal
