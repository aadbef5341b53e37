// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Command server runs the Livehub server: a WebSocket connection hub for
// live shopping shows with broadcast rooms, presence tracking, and WebRTC
// signaling relay, served under a suture supervision tree.
//
// The server handles graceful shutdown on SIGINT and SIGTERM: the
// supervision tree is canceled, the connection hub closes every socket, and
// the HTTP server drains in-flight requests within the shutdown timeout.
package main
