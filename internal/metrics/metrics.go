// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package metrics holds Vigil's Prometheus collectors. Everything is
// registered on the default registry through promauto and exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Notification log metrics
	NotificationsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_notifications_pushed_total",
			Help: "Total number of notifications accepted by the notification log",
		},
		[]string{"kind", "level"},
	)

	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_decode_failures_total",
			Help: "Total number of items that failed to decode",
		},
		[]string{"family", "reason"}, // family: "notification", "chart_data", "dashboard"
	)

	LogFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_notification_log_flushes_total",
			Help: "Total number of notification log flushes to durable storage",
		},
		[]string{"result"}, // "success", "failure"
	)

	LogEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_notification_log_evicted_total",
			Help: "Total number of notifications evicted from durable storage",
		},
	)

	LogStoredEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_notification_log_stored_entries",
			Help: "Number of notifications held in durable storage after the last flush",
		},
	)

	LogBufferedEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_notification_log_buffered_entries",
			Help: "Number of notifications waiting in the write-behind buffer",
		},
	)

	// Chart data distributor metrics
	SnapshotFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vigil_snapshot_fetch_duration_seconds",
			Help:    "Duration of batched chart snapshot fetches",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_snapshot_fetches_total",
			Help: "Total number of batched chart snapshot fetches",
		},
		[]string{"result"},
	)

	SnapshotDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_snapshot_deliveries_total",
			Help: "Total number of per-chart snapshot deliveries",
		},
		[]string{"chart_kind"},
	)

	DashboardSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_dashboard_saves_total",
			Help: "Total number of dashboard document saves",
		},
		[]string{"operation", "result"}, // operation: "add", "remove", "modify"
	)

	ChartsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_charts_active",
			Help: "Number of charts on the loaded dashboard",
		},
	)

	// Management API client metrics
	ManagementRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_management_requests_total",
			Help: "Total number of requests sent to the management API",
		},
		[]string{"method", "status"},
	)

	ManagementRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vigil_management_request_duration_seconds",
			Help:    "Duration of management API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Transport metrics
	TransportFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_transport_frames_total",
			Help: "Total number of frames received from a transport channel",
		},
		[]string{"channel"},
	)

	TransportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_transport_errors_total",
			Help: "Total number of transport-level errors reported by a channel",
		},
		[]string{"channel"},
	)

	TransportConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vigil_transport_connected",
			Help: "Whether a transport channel is currently connected (1) or not (0)",
		},
		[]string{"channel"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped for slow clients",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordManagementRequest records one call to the management API. A zero
// status means the request never produced a response.
func RecordManagementRequest(method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	ManagementRequests.WithLabelValues(method, label).Inc()
	ManagementRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSnapshotFetch records one batched snapshot fetch.
func RecordSnapshotFetch(duration time.Duration, err error) {
	SnapshotFetchDuration.Observe(duration.Seconds())
	SnapshotFetches.WithLabelValues(resultLabel(err)).Inc()
}

// RecordFlush records one notification log flush.
func RecordFlush(stored, evicted int, err error) {
	LogFlushes.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return
	}
	LogStoredEntries.Set(float64(stored))
	if evicted > 0 {
		LogEvicted.Add(float64(evicted))
	}
}

// RecordDashboardSave records one dashboard document save.
func RecordDashboardSave(operation string, err error) {
	DashboardSaves.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
