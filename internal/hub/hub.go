// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/castrio/livehub/internal/config"
	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/metrics"
	"github.com/castrio/livehub/internal/protocol"
)

// Hub is the connection hub service. It owns the connection table, the
// broadcast rooms, and the signaling rooms, and is constructed explicitly
// so tests can run isolated instances side by side.
type Hub struct {
	cfg config.HubConfig

	mu          sync.RWMutex
	conns       map[string]*Connection
	rooms       map[string]*room
	signalRooms map[string]*signalRoom
}

// New creates a hub with the given tunables. Zero values fall back to the
// package defaults so a zero config is usable in tests.
func New(cfg config.HubConfig) *Hub {
	if cfg.RateLimitMessages == 0 {
		cfg.RateLimitMessages = 60
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = 60 * time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.IdleSweepInterval == 0 {
		cfg.IdleSweepInterval = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.OutboxSize == 0 {
		cfg.OutboxSize = 64
	}

	return &Hub{
		cfg:         cfg,
		conns:       make(map[string]*Connection),
		rooms:       make(map[string]*room),
		signalRooms: make(map[string]*signalRoom),
	}
}

// Register creates hub-side state for a new socket and acknowledges it
// with a connected frame carrying the assigned connection id.
func (h *Hub) Register(t Transport) *Connection {
	c := &Connection{
		id:           uuid.NewString(),
		transport:    t,
		outbox:       NewOutbox(h.cfg.OutboxSize),
		rooms:        make(map[string]struct{}),
		lastActivity: time.Now(),
		alive:        true,
		limiter:      newRateWindow(h.cfg.RateLimitMessages, h.cfg.RateLimitWindow),
	}

	h.mu.Lock()
	h.conns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()

	metrics.Connections.Inc()
	metrics.ConnectionsTotal.Inc()
	logging.Info().Str("client_id", c.id).Int("total_connections", total).Msg("client connected")

	h.send(c, protocol.NewEvent(protocol.TypeConnected, protocol.ConnectedPayload{ClientID: c.id}))
	return c
}

// Unregister removes a connection: it leaves every joined room (with
// presence broadcasts to the remaining members), runs the signaling leave
// path, discards the outbox, and closes the transport. Unregistering an
// unknown id is a no-op.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, connID)

	for _, roomID := range sortedKeys(c.rooms) {
		h.leaveRoomLocked(c, roomID)
	}
	h.signalLeaveLocked(c)

	total := len(h.conns)
	h.mu.Unlock()

	c.outbox.Close()
	if err := c.transport.Close(); err != nil {
		logging.Debug().Err(err).Str("client_id", connID).Msg("transport close")
	}

	metrics.Connections.Dec()
	logging.Info().Str("client_id", connID).Int("total_connections", total).Msg("client disconnected")
}

// Pong records a liveness response from the socket.
func (h *Hub) Pong(connID string) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		c.markAlive(time.Now())
	}
}

// send enqueues one event for delivery. It never blocks: a full outbox
// evicts its oldest entry (best-effort delivery, counted as a drop). Outbox
// pushes never touch the hub mutex, so send is safe with or without it held.
func (h *Hub) send(c *Connection, ev protocol.Event) {
	if c.outbox.Push(ev) {
		metrics.OutboxDrops.Inc()
		logging.Debug().Str("client_id", c.id).Str("type", ev.Type).Msg("outbox full, dropped oldest frame")
	}
}

// Serve implements suture.Service. It runs the heartbeat and idle sweeps
// until the context is canceled, then closes every connection.
func (h *Hub) Serve(ctx context.Context) error {
	heartbeat := time.NewTicker(h.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	idle := time.NewTicker(h.cfg.IdleSweepInterval)
	defer idle.Stop()

	logging.Info().
		Dur("heartbeat_interval", h.cfg.HeartbeatInterval).
		Dur("idle_timeout", h.cfg.IdleTimeout).
		Msg("connection hub started")

	for {
		select {
		case <-ctx.Done():
			closed := h.closeAllConnections()
			logging.Info().
				Str("component", "connection-hub").
				Int("connections_closed", closed).
				Msg("connection hub stopped")
			return ctx.Err()

		case <-heartbeat.C:
			h.sweepHeartbeats()

		case <-idle.C:
			h.sweepIdle(time.Now())
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "connection-hub"
}

// sweepHeartbeats reaps connections that have not ponged since the
// previous sweep and probes the rest. Probes are handed to each transport's
// write loop, never written under a lock.
func (h *Hub) sweepHeartbeats() {
	for _, c := range h.snapshotConnections() {
		if !c.clearAlive() {
			metrics.HeartbeatReaps.WithLabelValues("missed_pong").Inc()
			logging.Info().Str("client_id", c.id).Msg("terminating unresponsive connection")
			h.Unregister(c.id)
			continue
		}
		if err := c.transport.Ping(); err != nil {
			metrics.HeartbeatReaps.WithLabelValues("ping_failed").Inc()
			logging.Info().Err(err).Str("client_id", c.id).Msg("ping failed, terminating connection")
			h.Unregister(c.id)
		}
	}
}

// sweepIdle force-disconnects connections whose last activity exceeds the
// idle timeout. This runs independently of ping/pong as a defense against
// transports without control-frame support.
func (h *Hub) sweepIdle(now time.Time) {
	for _, c := range h.snapshotConnections() {
		if c.idleSince(now, h.cfg.IdleTimeout) {
			metrics.HeartbeatReaps.WithLabelValues("idle").Inc()
			logging.Info().Str("client_id", c.id).Msg("terminating idle connection")
			h.Unregister(c.id)
		}
	}
}

// snapshotConnections copies the connection list in id order so sweeps can
// run without holding the hub mutex.
func (h *Hub) snapshotConnections() []*Connection {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	sort.Slice(conns, func(i, j int) bool { return conns[i].id < conns[j].id })
	return conns
}

// closeAllConnections unregisters every connection during shutdown and
// returns the number closed.
func (h *Hub) closeAllConnections() int {
	conns := h.snapshotConnections()
	for _, c := range conns {
		h.Unregister(c.id)
	}
	return len(conns)
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// RoomStat is a point-in-time view of one broadcast room.
type RoomStat struct {
	RoomID      string    `json:"roomId"`
	ShowID      string    `json:"showId,omitempty"`
	ViewerCount int       `json:"viewerCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats is a point-in-time view of the hub for the stats endpoint.
type Stats struct {
	Connections int        `json:"connections"`
	Rooms       int        `json:"rooms"`
	SignalRooms int        `json:"signalRooms"`
	RoomList    []RoomStat `json:"roomList"`
}

// Snapshot returns current hub statistics.
func (h *Hub) Snapshot() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{
		Connections: len(h.conns),
		Rooms:       len(h.rooms),
		SignalRooms: len(h.signalRooms),
		RoomList:    make([]RoomStat, 0, len(h.rooms)),
	}
	for _, r := range h.rooms {
		stats.RoomList = append(stats.RoomList, RoomStat{
			RoomID:      r.id,
			ShowID:      r.showID,
			ViewerCount: len(r.members),
			CreatedAt:   r.createdAt,
		})
	}
	sort.Slice(stats.RoomList, func(i, j int) bool {
		return stats.RoomList[i].RoomID < stats.RoomList[j].RoomID
	})
	return stats
}

// sortedKeys copies map keys in sorted order so iteration-order dependent
// operations (presence broadcasts, viewer ejection) behave deterministically.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
