// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package ingest moves access-log events from the HTTP endpoint into storage.

A submitted batch is validated, written to the BadgerDB write-ahead log and
published on a watermill topic. A router handler consumes the topic, inserts
the events into DuckDB and confirms the WAL entry:

	POST /api/v1/log -> Pipeline.Submit -> WAL.Write -> Publisher
	                                                     |
	Subscriber -> Recoverer -> PoisonQueue -> Retry -> handle -> InsertEvents -> WAL.Confirm

The transport is an in-process gochannel by default. Building with the nats
tag adds a NATS JetStream transport, optionally backed by an embedded server.

Entries that were never confirmed (crash, poisoned message, publish failure)
are republished by Recover once they are older than RecoveryMinAge. Events
carry their ID from Submit onward, so a redelivered batch inserts nothing new.

ParseLine and ParseLines accept the extended combined log format produced by
models.Event.FormatMessage as well as plain Apache/nginx combined lines.
*/
package ingest
