// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/castrio/livehub/internal/config"
	"github.com/castrio/livehub/internal/hub"
	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/metrics"
)

// Handler carries the dependencies of the HTTP endpoints.
type Handler struct {
	hub      *hub.Hub
	cfg      *config.Config
	upgrader websocket.Upgrader
	started  time.Time
}

// NewHandler builds the endpoint handler set. The upgrader's origin policy
// comes from security.cors_origins: "*" admits every origin, anything else
// is an allowlist matched against the Origin header's scheme and host.
func NewHandler(h *hub.Hub, cfg *config.Config) *Handler {
	handler := &Handler{
		hub:     h,
		cfg:     cfg,
		started: time.Now(),
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      handler.checkOrigin,
	}

	return handler
}

// checkOrigin admits browser connections per the configured origin list.
// Requests without an Origin header (non-browser clients) are admitted.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" {
			return true
		}
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}

	// Same-origin requests are always fine.
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}

	return false
}

// WebSocket upgrades the request and hands the socket to the hub. Both the
// broadcast surface and the signaling surface run over this one endpoint;
// frames are multiplexed by message type.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		metrics.UpgradeRejections.WithLabelValues("handshake").Inc()
		logging.Debug().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(ws, h.hub)
	client.Start(h.cfg.Hub.MaxMessageSize)
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness to accept connections.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"connections": h.hub.ConnectionCount(),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
	})
}

// Stats returns a point-in-time snapshot of connections, rooms, and
// signaling rooms.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to encode response body")
	}
}
