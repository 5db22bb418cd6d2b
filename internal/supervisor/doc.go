// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package supervisor runs the long-lived parts of a Horus server under a
suture v4 supervisor tree.

# Overview

	RootSupervisor ("horus")
	├── DataSupervisor ("data-layer")
	│   └── WALRecoveryService (if ingest.wal_enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   └── IngestConsumerService
	├── AnalysisSupervisor ("analysis-layer")
	│   └── AnalysisSchedulerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted. Failures decay over
FailureDecay seconds; once they exceed FailureThreshold the layer waits
FailureBackoff before the next restart. Layers count failures separately.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewIngestConsumerService(pipeline))
	tree.AddAnalysisService(services.NewAnalysisSchedulerService(runner, interval, runOnStart))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

DuckDB is not supervised. It is an embedded library and its failures are
handled by the circuit breaker in the database package.

If a service hangs during shutdown, UnstoppedServiceReport names it.
*/
package supervisor
