// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"time"

	"github.com/google/uuid"

	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/metrics"
	"github.com/castrio/livehub/internal/protocol"
)

// HandleFrame processes one inbound frame from a connection. The sequence
// is fixed: refresh activity and consult the rate limiter, decode into a
// typed variant at the parse boundary, then dispatch. A frame that fails
// rate limiting or decoding is answered with an error frame to the sender
// only; the connection always stays open.
//
// Frames from one connection arrive from a single read loop, so they are
// processed strictly in receipt order.
func (h *Hub) HandleFrame(connID string, data []byte) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if !c.touch(time.Now()) {
		metrics.RateLimitRejections.Inc()
		metrics.ProtocolErrors.WithLabelValues("rate_limited").Inc()
		h.send(c, protocol.NewError("Rate limit exceeded"))
		return
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		metrics.ProtocolErrors.WithLabelValues("malformed").Inc()
		logging.Debug().Err(err).Str("client_id", connID).Msg("rejected inbound frame")
		h.send(c, protocol.NewError(err.Error()))
		return
	}
	metrics.MessagesReceived.WithLabelValues(msg.Type()).Inc()

	switch m := msg.(type) {
	case *protocol.Auth:
		h.handleAuth(c, m)
	case *protocol.JoinRoom:
		h.handleJoinRoom(c, m)
	case *protocol.LeaveRoom:
		h.handleLeaveRoom(c, m)
	case *protocol.ChatMessage:
		h.handleChatMessage(c, m)
	case *protocol.PinProduct:
		h.handlePinProduct(c, m)
	case *protocol.SendGift:
		h.handleSendGift(c, m)
	case *protocol.LikeShow:
		h.handleLikeShow(c, m)
	case *protocol.ViewerStats:
		h.handleViewerStats(c, m)
	case *protocol.SignalJoin:
		h.handleSignalJoin(c, m)
	case *protocol.SignalOffer:
		h.relaySignal(c, protocol.TypeSignalOffer, m.PeerID, protocol.SignalSDPPayload{PeerID: c.id, SDP: m.SDP})
	case *protocol.SignalAnswer:
		h.relaySignal(c, protocol.TypeSignalAnswer, m.PeerID, protocol.SignalSDPPayload{PeerID: c.id, SDP: m.SDP})
	case *protocol.SignalICE:
		h.relaySignal(c, protocol.TypeSignalICE, m.PeerID, protocol.SignalICEPayload{PeerID: c.id, Candidate: m.Candidate})
	case *protocol.SignalLeave:
		h.handleSignalLeave(c)
	}
}

// handleAuth records the client's identity. The token is opaque to the
// hub; identity verification lives outside this subsystem.
func (h *Hub) handleAuth(c *Connection, m *protocol.Auth) {
	c.setUser(m.UserID)
	h.send(c, protocol.NewEvent(protocol.TypeAuthSuccess, protocol.AuthSuccessPayload{UserID: m.UserID}))
}

// handleJoinRoom attaches the connection to a broadcast room. The joiner
// gets a joined_room confirmation; every other member gets a
// viewer_count_update, so nobody is notified twice.
func (h *Hub) handleJoinRoom(c *Connection, m *protocol.JoinRoom) {
	h.mu.Lock()
	count := h.joinRoomLocked(c, m.RoomID, m.ShowID)
	h.broadcastLocked(m.RoomID, protocol.NewEvent(protocol.TypeViewerCountUpdate, protocol.ViewerCountUpdatePayload{
		RoomID:      m.RoomID,
		ViewerCount: count,
	}), c.id)
	h.send(c, protocol.NewEvent(protocol.TypeJoinedRoom, protocol.JoinedRoomPayload{
		RoomID:      m.RoomID,
		ViewerCount: count,
	}))
	h.mu.Unlock()

	logging.Debug().Str("client_id", c.id).Str("room_id", m.RoomID).Int("viewer_count", count).Msg("joined room")
}

func (h *Hub) handleLeaveRoom(c *Connection, m *protocol.LeaveRoom) {
	h.mu.Lock()
	h.leaveRoomLocked(c, m.RoomID)
	h.mu.Unlock()
}

// handleChatMessage relays a chat message to every room member, sender
// included, with a server-assigned id and timestamp. Chat history is not
// persisted by this subsystem.
func (h *Hub) handleChatMessage(c *Connection, m *protocol.ChatMessage) {
	ev := protocol.NewEvent(protocol.TypeChatMessage, protocol.ChatMessagePayload{
		ID:         uuid.NewString(),
		RoomID:     m.RoomID,
		UserID:     c.UserID(),
		UserName:   m.UserName,
		UserAvatar: m.UserAvatar,
		Message:    m.Message,
	})

	h.mu.Lock()
	h.broadcastLocked(m.RoomID, ev, "")
	h.mu.Unlock()
}

func (h *Hub) handlePinProduct(c *Connection, m *protocol.PinProduct) {
	ev := protocol.NewEvent(protocol.TypeProductPinned, protocol.ProductPinnedPayload{
		RoomID:       m.RoomID,
		UserID:       c.UserID(),
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		ProductPrice: m.ProductPrice,
		ProductImage: m.ProductImage,
	})

	h.mu.Lock()
	h.broadcastLocked(m.RoomID, ev, "")
	h.mu.Unlock()
}

func (h *Hub) handleSendGift(c *Connection, m *protocol.SendGift) {
	ev := protocol.NewEvent(protocol.TypeGiftSent, protocol.GiftSentPayload{
		ID:       uuid.NewString(),
		RoomID:   m.RoomID,
		UserID:   c.UserID(),
		GiftID:   m.GiftID,
		GiftName: m.GiftName,
		GiftIcon: m.GiftIcon,
		UserName: m.UserName,
	})

	h.mu.Lock()
	h.broadcastLocked(m.RoomID, ev, "")
	h.mu.Unlock()
}

func (h *Hub) handleLikeShow(c *Connection, m *protocol.LikeShow) {
	ev := protocol.NewEvent(protocol.TypeShowLiked, protocol.ShowLikedPayload{
		RoomID: m.RoomID,
		UserID: c.UserID(),
		ShowID: m.ShowID,
	})

	h.mu.Lock()
	h.broadcastLocked(m.RoomID, ev, "")
	h.mu.Unlock()
}

// handleViewerStats answers the requester only with the room's current
// viewer count and member id list.
func (h *Hub) handleViewerStats(c *Connection, m *protocol.ViewerStats) {
	h.mu.RLock()
	members := h.memberIDsLocked(m.RoomID)
	h.mu.RUnlock()

	if members == nil {
		members = []string{}
	}
	h.send(c, protocol.NewEvent(protocol.TypeViewerStats, protocol.ViewerStatsPayload{
		RoomID:      m.RoomID,
		ViewerCount: len(members),
		Clients:     members,
	}))
}
