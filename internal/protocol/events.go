// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package protocol

import "github.com/goccy/go-json"

// ConnectedPayload acknowledges a new connection. ClientID doubles as the
// connection's peer id on the signaling surface.
type ConnectedPayload struct {
	ClientID string `json:"clientId"`
}

// AuthSuccessPayload confirms an accepted auth message.
type AuthSuccessPayload struct {
	UserID string `json:"userId"`
}

// JoinedRoomPayload confirms a join to the joining connection only.
type JoinedRoomPayload struct {
	RoomID      string `json:"roomId"`
	ViewerCount int    `json:"viewerCount"`
}

// ViewerCountUpdatePayload is broadcast to the other members of a room
// whenever its membership changes.
type ViewerCountUpdatePayload struct {
	RoomID      string `json:"roomId"`
	ViewerCount int    `json:"viewerCount"`
}

// ChatMessagePayload carries a relayed chat message with its
// server-assigned id.
type ChatMessagePayload struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	UserID     string `json:"userId,omitempty"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar,omitempty"`
	Message    string `json:"message"`
}

// ProductPinnedPayload carries a pinned-product announcement.
type ProductPinnedPayload struct {
	RoomID       string  `json:"roomId"`
	UserID       string  `json:"userId,omitempty"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	ProductImage string  `json:"productImage,omitempty"`
}

// GiftSentPayload carries a gift announcement with its server-assigned id.
type GiftSentPayload struct {
	ID       string `json:"id"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId,omitempty"`
	GiftID   string `json:"giftId"`
	GiftName string `json:"giftName"`
	GiftIcon string `json:"giftIcon,omitempty"`
	UserName string `json:"userName"`
}

// ShowLikedPayload carries a like reaction.
type ShowLikedPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
	ShowID string `json:"showId,omitempty"`
}

// ViewerStatsPayload answers a viewer_stats request. Clients lists the
// connection ids currently in the room.
type ViewerStatsPayload struct {
	RoomID      string   `json:"roomId"`
	ViewerCount int      `json:"viewerCount"`
	Clients     []string `json:"clients"`
}

// ErrorPayload is the broadcast-surface error frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SignalErrorPayload is the signaling-surface error frame.
type SignalErrorPayload struct {
	Error string `json:"error"`
}

// SignalJoinPayload notifies a peer that another peer entered its
// signaling room, or confirms the peer's own join.
type SignalJoinPayload struct {
	PeerID string `json:"peerId"`
	UserID string `json:"userId,omitempty"`
	Role   Role   `json:"role"`
	ShowID string `json:"showId"`
}

// SignalSDPPayload is a relayed offer or answer. PeerID identifies the
// originating peer so the recipient can address its reply.
type SignalSDPPayload struct {
	PeerID string          `json:"peerId"`
	SDP    json.RawMessage `json:"sdp"`
}

// SignalICEPayload is a relayed ICE candidate.
type SignalICEPayload struct {
	PeerID    string          `json:"peerId"`
	Candidate json.RawMessage `json:"candidate"`
}

// SignalLeavePayload notifies remaining peers that a peer left. Role tells
// viewers whether the departing peer was the host, which ends the session.
type SignalLeavePayload struct {
	PeerID string `json:"peerId"`
	Role   Role   `json:"role"`
}

// NewError builds a broadcast-surface error event.
func NewError(message string) Event {
	return NewEvent(TypeError, ErrorPayload{Message: message})
}

// NewSignalError builds a signaling-surface error event.
func NewSignalError(message string) Event {
	return NewEvent(TypeError, SignalErrorPayload{Error: message})
}
