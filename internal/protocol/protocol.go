// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Client-to-server message types (broadcast surface).
const (
	TypeAuth        = "auth"
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeChatMessage = "chat_message"
	TypePinProduct  = "pin_product"
	TypeSendGift    = "send_gift"
	TypeLikeShow    = "like_show"
	TypeViewerStats = "viewer_stats"
)

// Signaling surface message types (bidirectional, peer-addressed).
const (
	TypeSignalJoin   = "join"
	TypeSignalOffer  = "offer"
	TypeSignalAnswer = "answer"
	TypeSignalICE    = "ice-candidate"
	TypeSignalLeave  = "leave"
)

// Server-to-client message types.
const (
	TypeConnected         = "connected"
	TypeAuthSuccess       = "auth_success"
	TypeJoinedRoom        = "joined_room"
	TypeViewerCountUpdate = "viewer_count_update"
	TypeProductPinned     = "product_pinned"
	TypeGiftSent          = "gift_sent"
	TypeShowLiked         = "show_liked"
	TypeError             = "error"
)

// Role identifies a peer's part in a signaling room.
type Role string

const (
	RoleHost   Role = "host"
	RoleViewer Role = "viewer"
)

// Envelope is the outer frame of every message on the wire.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// Event is an immutable outbound envelope produced by a handler.
// The timestamp is assigned by the server at construction time.
type Event struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// NewEvent builds an outbound event stamped with the current server time
// in milliseconds since the Unix epoch.
func NewEvent(messageType string, payload any) Event {
	return Event{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// MarshalEvent serializes an event for transmission.
func MarshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

// ProtocolError describes a frame rejected at the parse boundary.
// Message is safe to echo back to the sender in an error frame.
type ProtocolError struct {
	Message string
	cause   error
}

func (e *ProtocolError) Error() string { return e.Message }

func (e *ProtocolError) Unwrap() error { return e.cause }

// ErrUnknownType marks frames whose type is outside the enumerated set.
var ErrUnknownType = errors.New("unknown message type")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses a raw frame into one of the enumerated inbound variants.
// It returns a *ProtocolError for malformed JSON, unknown types, and
// payloads that fail validation.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Message: "Invalid message format", cause: err}
	}

	msg, err := newInbound(env.Type)
	if err != nil {
		return nil, &ProtocolError{
			Message: fmt.Sprintf("Unknown message type: %s", env.Type),
			cause:   err,
		}
	}

	// An absent payload decodes as the zero value so that payload-less
	// types (leave) pass validation, and required-field types fail it.
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, msg); err != nil {
			return nil, &ProtocolError{
				Message: fmt.Sprintf("Invalid payload for %s", env.Type),
				cause:   err,
			}
		}
	}

	if err := validate.Struct(msg); err != nil {
		return nil, &ProtocolError{
			Message: fmt.Sprintf("Invalid payload for %s", env.Type),
			cause:   err,
		}
	}

	return msg, nil
}

// newInbound maps a wire type to a fresh instance of its variant.
// This is the single place the inbound set is enumerated; Decode rejects
// everything else.
func newInbound(messageType string) (Inbound, error) {
	switch messageType {
	case TypeAuth:
		return &Auth{}, nil
	case TypeJoinRoom:
		return &JoinRoom{}, nil
	case TypeLeaveRoom:
		return &LeaveRoom{}, nil
	case TypeChatMessage:
		return &ChatMessage{}, nil
	case TypePinProduct:
		return &PinProduct{}, nil
	case TypeSendGift:
		return &SendGift{}, nil
	case TypeLikeShow:
		return &LikeShow{}, nil
	case TypeViewerStats:
		return &ViewerStats{}, nil
	case TypeSignalJoin:
		return &SignalJoin{}, nil
	case TypeSignalOffer:
		return &SignalOffer{}, nil
	case TypeSignalAnswer:
		return &SignalAnswer{}, nil
	case TypeSignalICE:
		return &SignalICE{}, nil
	case TypeSignalLeave:
		return &SignalLeave{}, nil
	default:
		return nil, ErrUnknownType
	}
}
