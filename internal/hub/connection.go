// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"sync"
	"time"

	"github.com/castrio/livehub/internal/protocol"
)

// Transport is the socket side of a registered connection. It is
// implemented by the WebSocket client in internal/api and by fakes in
// tests.
//
// Neither method may block on network I/O: Ping hands a probe request to
// the transport's write loop, and Close tears the socket down
// asynchronously. Both must be safe to call multiple times and from the
// hub's sweep goroutine.
type Transport interface {
	Ping() error
	Close() error
}

// Connection is the hub-side state of one live socket. It is owned
// exclusively by the hub's connection table; rooms reference it by id only.
//
// Locking: rooms, signalShow, and signalRole are guarded by the hub mutex
// (they are only touched by room/signaling operations). The fields below
// mu are the connection's volatile state and are guarded by mu.
type Connection struct {
	id        string
	transport Transport
	outbox    *Outbox

	// Guarded by the hub mutex.
	rooms      map[string]struct{}
	signalShow string
	signalRole protocol.Role

	mu           sync.Mutex
	userID       string
	lastActivity time.Time
	alive        bool
	limiter      rateWindow
}

// ID returns the connection id. It doubles as the signaling peer id.
func (c *Connection) ID() string {
	return c.id
}

// UserID returns the identity set by an auth message, or "" before auth.
func (c *Connection) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Outbox returns the connection's outbound queue for the transport's
// write loop to drain.
func (c *Connection) Outbox() *Outbox {
	return c.outbox
}

// setUser records the authenticated identity.
func (c *Connection) setUser(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// touch refreshes the activity timestamp and consults the rate limiter.
// Every inbound frame passes through here before reaching a handler.
func (c *Connection) touch(now time.Time) (allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActivity = now
	return c.limiter.allow(now)
}

// markAlive records a pong: the liveness flag is set and activity
// refreshed.
func (c *Connection) markAlive(now time.Time) {
	c.mu.Lock()
	c.alive = true
	c.lastActivity = now
	c.mu.Unlock()
}

// clearAlive clears the liveness flag before a probe and reports whether
// the connection had responded since the previous probe.
func (c *Connection) clearAlive() (wasAlive bool) {
	c.mu.Lock()
	wasAlive = c.alive
	c.alive = false
	c.mu.Unlock()
	return wasAlive
}

// idleSince reports whether the connection's last activity is older than
// the given timeout at time now.
func (c *Connection) idleSince(now time.Time, timeout time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastActivity) > timeout
}
