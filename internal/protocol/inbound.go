// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package protocol

import "github.com/goccy/go-json"

// Inbound is the closed set of client-to-server message variants; only
// types enumerated in newInbound are ever produced by Decode. Type returns
// the variant's wire type.
type Inbound interface {
	Type() string
}

// Auth carries the client's opaque identity token. Token contents are not
// interpreted by the hub.
type Auth struct {
	Token  string `json:"token"`
	UserID string `json:"userId" validate:"required"`
}

// JoinRoom subscribes the connection to a broadcast room, creating the room
// on first join. ShowID is recorded on the room when present.
type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required"`
	ShowID string `json:"showId,omitempty"`
}

// LeaveRoom unsubscribes the connection from a broadcast room.
type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

// ChatMessage is relayed to every member of the room, sender included.
type ChatMessage struct {
	RoomID     string `json:"roomId" validate:"required"`
	Message    string `json:"message" validate:"required"`
	UserName   string `json:"userName" validate:"required"`
	UserAvatar string `json:"userAvatar,omitempty"`
}

// PinProduct announces the product currently pinned by the host.
type PinProduct struct {
	RoomID       string  `json:"roomId" validate:"required"`
	ProductID    string  `json:"productId" validate:"required"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	ProductImage string  `json:"productImage,omitempty"`
}

// SendGift announces a gift sent during the show.
type SendGift struct {
	RoomID   string `json:"roomId" validate:"required"`
	GiftID   string `json:"giftId" validate:"required"`
	GiftName string `json:"giftName"`
	GiftIcon string `json:"giftIcon,omitempty"`
	UserName string `json:"userName"`
}

// LikeShow registers a like reaction for the show.
type LikeShow struct {
	RoomID string `json:"roomId" validate:"required"`
	ShowID string `json:"showId,omitempty"`
}

// ViewerStats requests the current viewer count and member list of a room.
// The response is unicast to the requester.
type ViewerStats struct {
	RoomID string `json:"roomId" validate:"required"`
}

// SignalJoin enters a signaling room as host or viewer.
type SignalJoin struct {
	ShowID string `json:"showId" validate:"required"`
	UserID string `json:"userId"`
	Role   Role   `json:"role" validate:"required,oneof=host viewer"`
}

// SignalOffer relays an SDP offer to a specific peer. The SDP body is
// opaque to the hub.
type SignalOffer struct {
	PeerID string          `json:"peerId" validate:"required"`
	SDP    json.RawMessage `json:"sdp" validate:"required"`
}

// SignalAnswer relays an SDP answer to a specific peer.
type SignalAnswer struct {
	PeerID string          `json:"peerId" validate:"required"`
	SDP    json.RawMessage `json:"sdp" validate:"required"`
}

// SignalICE relays an ICE candidate to a specific peer. The candidate body
// is opaque to the hub.
type SignalICE struct {
	PeerID    string          `json:"peerId" validate:"required"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

// SignalLeave exits the signaling room. It carries no payload; the peer is
// identified by its connection.
type SignalLeave struct{}

func (*Auth) Type() string         { return TypeAuth }
func (*JoinRoom) Type() string     { return TypeJoinRoom }
func (*LeaveRoom) Type() string    { return TypeLeaveRoom }
func (*ChatMessage) Type() string  { return TypeChatMessage }
func (*PinProduct) Type() string   { return TypePinProduct }
func (*SendGift) Type() string     { return TypeSendGift }
func (*LikeShow) Type() string     { return TypeLikeShow }
func (*ViewerStats) Type() string  { return TypeViewerStats }
func (*SignalJoin) Type() string   { return TypeSignalJoin }
func (*SignalOffer) Type() string  { return TypeSignalOffer }
func (*SignalAnswer) Type() string { return TypeSignalAnswer }
func (*SignalICE) Type() string    { return TypeSignalICE }
func (*SignalLeave) Type() string  { return TypeSignalLeave }
