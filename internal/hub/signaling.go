// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"time"

	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/metrics"
	"github.com/castrio/livehub/internal/protocol"
)

// signalRoom is the per-show WebRTC negotiation context: at most one host
// and any number of viewers. A room with viewers but no host cannot make
// progress, so a host leave ejects every viewer and destroys the room;
// the next host join recreates it.
type signalRoom struct {
	showID    string
	hostID    string
	viewers   map[string]struct{}
	createdAt time.Time
}

// handleSignalJoin enters a signaling room. A second host join into a
// hosted room is rejected without mutating the target room; a viewer join
// always succeeds and, when a host is present, notifies it of the new peer
// id so it can initiate an offer.
func (h *Hub) handleSignalJoin(c *Connection, m *protocol.SignalJoin) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A connection holds one negotiation context. Joining a different show,
	// or switching roles within the current one, is a leave-then-join; the
	// leave must run first so the connection's id cannot linger in a room
	// it no longer points at. Re-joining with the same show and role is
	// idempotent.
	if c.signalShow != "" && (c.signalShow != m.ShowID || c.signalRole != m.Role) {
		h.signalLeaveLocked(c)
	}

	sr, ok := h.signalRooms[m.ShowID]
	if !ok {
		sr = &signalRoom{
			showID:    m.ShowID,
			viewers:   make(map[string]struct{}),
			createdAt: time.Now(),
		}
		h.signalRooms[m.ShowID] = sr
		metrics.SignalRooms.Inc()
		logging.Info().Str("show_id", m.ShowID).Msg("signaling room created")
	}

	switch m.Role {
	case protocol.RoleHost:
		if sr.hostID != "" && sr.hostID != c.id {
			metrics.ProtocolErrors.WithLabelValues("policy").Inc()
			h.send(c, protocol.NewSignalError("Room already has a host"))
			return
		}
		sr.hostID = c.id
		c.signalShow = m.ShowID
		c.signalRole = protocol.RoleHost
		h.send(c, protocol.NewEvent(protocol.TypeSignalJoin, protocol.SignalJoinPayload{
			PeerID: c.id,
			UserID: m.UserID,
			Role:   protocol.RoleHost,
			ShowID: m.ShowID,
		}))
		logging.Info().Str("show_id", m.ShowID).Str("peer_id", c.id).Msg("host joined signaling room")

	case protocol.RoleViewer:
		sr.viewers[c.id] = struct{}{}
		c.signalShow = m.ShowID
		c.signalRole = protocol.RoleViewer
		h.send(c, protocol.NewEvent(protocol.TypeSignalJoin, protocol.SignalJoinPayload{
			PeerID: c.id,
			UserID: m.UserID,
			Role:   protocol.RoleViewer,
			ShowID: m.ShowID,
		}))
		if host, ok := h.conns[sr.hostID]; ok && sr.hostID != "" {
			h.send(host, protocol.NewEvent(protocol.TypeSignalJoin, protocol.SignalJoinPayload{
				PeerID: c.id,
				UserID: m.UserID,
				Role:   protocol.RoleViewer,
				ShowID: m.ShowID,
			}))
		}
		logging.Debug().Str("show_id", m.ShowID).Str("peer_id", c.id).Msg("viewer joined signaling room")
	}
}

// relaySignal forwards an offer, answer, or ICE candidate to the targeted
// peer with the sender's peer id attached. An unknown target is an
// expected race (the peer disconnected mid-flight), not a client error, so
// the frame is dropped without a response.
func (h *Hub) relaySignal(c *Connection, messageType, targetPeerID string, payload any) {
	h.mu.RLock()
	target, ok := h.conns[targetPeerID]
	h.mu.RUnlock()

	if !ok {
		metrics.SignalRelayMisses.Inc()
		logging.Debug().
			Str("type", messageType).
			Str("from_peer", c.id).
			Str("to_peer", targetPeerID).
			Msg("relay target gone, dropping frame")
		return
	}

	metrics.SignalRelays.WithLabelValues(messageType).Inc()
	h.send(target, protocol.NewEvent(messageType, payload))
}

// handleSignalLeave exits the signaling room explicitly. Socket close
// reaches the same cleanup through Unregister.
func (h *Hub) handleSignalLeave(c *Connection) {
	h.mu.Lock()
	h.signalLeaveLocked(c)
	h.mu.Unlock()
}

// signalLeaveLocked detaches the connection from its signaling room.
// A departing host ejects and notifies every viewer, since signaling
// without a host cannot make progress; a departing viewer notifies the
// host. Caller holds the hub mutex.
func (h *Hub) signalLeaveLocked(c *Connection) {
	show := c.signalShow
	if show == "" {
		return
	}
	c.signalShow = ""
	role := c.signalRole
	c.signalRole = ""

	sr, ok := h.signalRooms[show]
	if !ok {
		return
	}

	if role == protocol.RoleHost && sr.hostID == c.id {
		sr.hostID = ""
		leaveEvent := protocol.NewEvent(protocol.TypeSignalLeave, protocol.SignalLeavePayload{
			PeerID: c.id,
			Role:   protocol.RoleHost,
		})
		for _, viewerID := range sortedKeys(sr.viewers) {
			delete(sr.viewers, viewerID)
			viewer, ok := h.conns[viewerID]
			// A viewer pointing at another show is a stale set entry; its
			// live association must not be wiped from here.
			if !ok || viewer.signalShow != show {
				continue
			}
			viewer.signalShow = ""
			viewer.signalRole = ""
			h.send(viewer, leaveEvent)
		}
		logging.Info().Str("show_id", show).Str("peer_id", c.id).Msg("host left, signaling room closed")
	} else {
		delete(sr.viewers, c.id)
		if host, ok := h.conns[sr.hostID]; ok && sr.hostID != "" {
			h.send(host, protocol.NewEvent(protocol.TypeSignalLeave, protocol.SignalLeavePayload{
				PeerID: c.id,
				Role:   protocol.RoleViewer,
			}))
		}
	}

	h.deleteSignalRoomIfEmptyLocked(sr)
}

// deleteSignalRoomIfEmptyLocked destroys a signaling room once it has
// neither a host nor viewers. Caller holds the hub mutex.
func (h *Hub) deleteSignalRoomIfEmptyLocked(sr *signalRoom) {
	if sr.hostID == "" && len(sr.viewers) == 0 {
		if _, ok := h.signalRooms[sr.showID]; ok {
			delete(h.signalRooms, sr.showID)
			metrics.SignalRooms.Dec()
			logging.Debug().Str("show_id", sr.showID).Msg("signaling room destroyed")
		}
	}
}
