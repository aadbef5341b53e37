// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package metrics provides Prometheus instrumentation for the connection hub:
// connection and room population, message throughput, rate limiting,
// heartbeat reaping, outbox overflow, and signaling relay volume.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection Metrics
	Connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livehub_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livehub_connections_total",
			Help: "Total number of connections accepted",
		},
	)

	HeartbeatReaps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livehub_heartbeat_reaps_total",
			Help: "Total number of connections terminated by liveness sweeps",
		},
		[]string{"reason"}, // "missed_pong", "idle", "ping_failed"
	)

	// Room Metrics
	Rooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livehub_rooms",
			Help: "Current number of active broadcast rooms",
		},
	)

	SignalRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livehub_signal_rooms",
			Help: "Current number of active signaling rooms",
		},
	)

	// Message Metrics
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livehub_messages_received_total",
			Help: "Total number of inbound frames by message type",
		},
		[]string{"type"},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livehub_messages_sent_total",
			Help: "Total number of outbound frames written to sockets",
		},
	)

	ProtocolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livehub_protocol_errors_total",
			Help: "Total number of rejected inbound frames",
		},
		[]string{"reason"}, // "malformed", "rate_limited", "policy"
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livehub_rate_limit_rejections_total",
			Help: "Total number of frames rejected by the per-connection rate limiter",
		},
	)

	OutboxDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livehub_outbox_drops_total",
			Help: "Total number of queued outbound frames evicted on overflow",
		},
	)

	// Signaling Metrics
	SignalRelays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livehub_signal_relays_total",
			Help: "Total number of targeted signaling relays by message type",
		},
		[]string{"type"}, // "offer", "answer", "ice-candidate"
	)

	SignalRelayMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livehub_signal_relay_misses_total",
			Help: "Total number of signaling relays dropped because the target peer was gone",
		},
	)

	// HTTP Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livehub_http_requests_total",
			Help: "Total number of HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "livehub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livehub_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	UpgradeRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livehub_upgrade_rejections_total",
			Help: "Total number of rejected WebSocket upgrade attempts",
		},
		[]string{"reason"}, // "rate_limited", "handshake"
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequests.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}
