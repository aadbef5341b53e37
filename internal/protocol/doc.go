// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package protocol defines the wire protocol of the connection hub.
//
// Every frame on the wire is a JSON envelope:
//
//	{ "type": string, "payload": object, "timestamp": number }
//
// Inbound frames are decoded into a closed set of typed variants by Decode.
// Anything outside the enumerated set - unknown types, malformed JSON,
// payloads missing required fields - is rejected at this boundary with a
// ProtocolError whose message is safe to echo back to the sender. Handlers
// therefore never see an untyped or partially valid message.
//
// Outbound frames are built with NewEvent, which stamps the server timestamp,
// and serialized with MarshalEvent (goccy/go-json).
//
// Two surfaces share the envelope and are multiplexed by type:
//
//   - Broadcast surface: auth, join_room, leave_room, chat_message,
//     pin_product, send_gift, like_show, viewer_stats.
//   - Signaling surface: join, offer, answer, ice-candidate, leave.
//
// Signaling error frames carry {"error": ...} while broadcast-surface error
// frames carry {"message": ...}; both use type "error".
package protocol
