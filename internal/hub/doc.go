// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package hub implements the connection hub: the connection registry, room
// and presence management, per-connection rate limiting, heartbeat
// monitoring, message routing, and the WebRTC signaling relay.
//
// # Structure
//
// A Hub is an explicitly constructed service instance (no global state).
// Its Serve method implements suture.Service and runs the liveness sweeps;
// canceling the context closes every connection and returns.
//
// Shared state - the connection table, broadcast rooms, and signaling
// rooms - is guarded by a single hub mutex. Per-connection volatile state
// (identity, activity, liveness, rate window) is guarded by the
// connection's own mutex. No socket I/O ever happens under either lock:
// outbound frames are pushed onto a per-connection bounded Outbox drained
// by the transport's write loop, and heartbeat pings are non-blocking
// signals to that same loop.
//
// # Delivery semantics
//
// Delivery is at-most-once and best-effort. When an Outbox overflows the
// oldest queued frame is evicted silently; this favors liveness over
// completeness, which is acceptable because authoritative state (viewer
// counts, membership) is always recomputed from the member sets, never
// derived from message history.
package hub
