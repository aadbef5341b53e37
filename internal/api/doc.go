// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package api provides the HTTP surface of the hub: the WebSocket upgrade
// endpoint, health and readiness probes, the Prometheus exposition endpoint,
// and a JSON stats endpoint. Routing uses Chi with CORS and per-IP upgrade
// rate limiting.
//
// Each accepted socket gets a Client that runs one read pump and one write
// pump. The read pump feeds inbound frames to the hub; the write pump drains
// the connection's outbox and answers the hub's ping requests. All socket
// writes happen on the write pump, satisfying the single-writer requirement
// of the underlying WebSocket implementation.
package api
