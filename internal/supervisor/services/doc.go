// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package services adapts Horus components to suture.Service.

Each wrapper translates a component's lifecycle into Serve(ctx) and returns
ctx.Err() on shutdown:

  - HTTPServerService: ListenAndServe / Shutdown of the API server
  - IngestConsumerService: the watermill router of the ingest pipeline
  - AnalysisSchedulerService: periodic analysis passes on a ticker
  - WALRecoveryService: periodic redelivery of pending WAL entries

The interfaces each wrapper accepts are the minimum it calls, so tests use
small fakes instead of real components.
*/
package services
