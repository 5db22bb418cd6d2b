// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

/*
Package metrics exposes the Prometheus instrumentation of Horus.

All collectors are registered on the default registry through promauto and
served at /metrics:

	curl http://localhost:8080/metrics | grep horus_

Groups:
  - horus_analysis_*: pass count, duration, scanned events, conflicts, watermark
  - horus_anomalies_*: anomalies detected and committed per kind
  - horus_ingest_*: accepted and rejected events, WAL backlog
  - horus_db_*: query latency and errors, circuit breaker state
  - horus_http_*: request count, latency and in-flight requests
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis passes
	AnalysisPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_analysis_passes_total",
			Help: "Analysis passes by trigger and outcome",
		},
		[]string{"trigger", "outcome"}, // trigger: scheduled|on_demand, outcome: success|noop|error
	)

	AnalysisPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horus_analysis_pass_duration_seconds",
			Help:    "Wall time of analysis passes",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"trigger"},
	)

	AnalysisEventsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "horus_analysis_events_scanned_total",
			Help: "Events fed through the detectors",
		},
	)

	AnalysisSubPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "horus_analysis_sub_passes_total",
			Help: "Batches committed because a backlog exceeded the per-pass cap",
		},
	)

	AnalysisPassConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_analysis_pass_conflicts_total",
			Help: "Triggers that arrived while a pass was in flight",
		},
		[]string{"action"}, // queued|dropped|rejected
	)

	WatermarkTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "horus_analysis_watermark_timestamp_seconds",
			Help: "Unix time of the persisted analysis watermark",
		},
	)

	// Anomalies
	AnomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_anomalies_detected_total",
			Help: "Anomalies emitted by detectors, before de-duplication",
		},
		[]string{"kind"},
	)

	AnomaliesCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_anomalies_committed_total",
			Help: "Anomalies newly persisted",
		},
		[]string{"kind"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_notifications_total",
			Help: "Anomaly notifications by notifier and result",
		},
		[]string{"notifier", "result"},
	)

	// Ingestion
	IngestEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_ingest_events_total",
			Help: "Events received for ingestion by result",
		},
		[]string{"result"}, // accepted|stored|duplicate|invalid|failed
	)

	IngestWALPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "horus_ingest_wal_pending",
			Help: "Ingest batches written to the WAL but not yet stored",
		},
	)

	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horus_db_query_duration_seconds",
			Help:    "Duration of DuckDB operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_db_query_errors_total",
			Help: "Failed DuckDB operations",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "horus_db_circuit_breaker_state",
			Help: "Storage circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_db_circuit_breaker_transitions_total",
			Help: "Storage circuit breaker state changes",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horus_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horus_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "horus_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)
)

// RecordAnalysisPass records the outcome of one pass.
func RecordAnalysisPass(trigger, outcome string, duration time.Duration) {
	AnalysisPassesTotal.WithLabelValues(trigger, outcome).Inc()
	AnalysisPassDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordDBQuery records latency and failure of a storage operation.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records a served HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetWatermark publishes the persisted watermark.
func SetWatermark(ts time.Time) {
	WatermarkTimestamp.Set(float64(ts.UnixNano()) / 1e9)
}
