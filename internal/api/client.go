// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/castrio/livehub/internal/hub"
	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/metrics"
	"github.com/castrio/livehub/internal/protocol"
)

const (
	// writeWait bounds each socket write, including control frames.
	writeWait = 10 * time.Second

	// pongWait is the read deadline extension granted on every pong and
	// every data frame. It must exceed the hub's heartbeat interval with
	// room for one missed sweep.
	pongWait = 90 * time.Second
)

// Client binds one WebSocket to one hub connection. It owns the socket's
// read and write goroutines; the hub never touches the socket directly and
// reaches it only through the Transport methods.
type Client struct {
	ws   *websocket.Conn
	hub  *hub.Hub
	conn *hub.Connection

	// pingCh carries ping requests from the hub's heartbeat sweep to the
	// write pump. Capacity one: coalescing consecutive requests is fine,
	// losing the connection to a blocked sweep is not.
	pingCh chan struct{}

	closeOnce sync.Once
}

// NewClient wraps an upgraded socket. Register the returned client's
// transport with the hub before calling Start.
func NewClient(ws *websocket.Conn, h *hub.Hub) *Client {
	return &Client{
		ws:     ws,
		hub:    h,
		pingCh: make(chan struct{}, 1),
	}
}

// Ping implements hub.Transport. It never blocks: the request is handed to
// the write pump, and a request already pending covers this one.
func (c *Client) Ping() error {
	select {
	case c.pingCh <- struct{}{}:
	default:
	}
	return nil
}

// Close implements hub.Transport. Closing the socket unblocks the read
// pump, which has already detached from the hub by the time Close is
// reachable. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}

// Start registers the client with the hub and launches both pumps.
func (c *Client) Start(maxMessageSize int64) {
	c.conn = c.hub.Register(c)
	go c.writePump()
	go c.readPump(maxMessageSize)
}

// readPump reads frames off the socket and hands them to the hub until the
// socket errors, then unregisters the connection. Frames are delivered in
// receipt order because this is the only reader.
func (c *Client) readPump(maxMessageSize int64) {
	defer c.hub.Unregister(c.conn.ID())

	c.ws.SetReadLimit(maxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Str("client_id", c.conn.ID()).Msg("failed to set read deadline")
		return
	}

	c.ws.SetPongHandler(func(string) error {
		c.hub.Pong(c.conn.ID())
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Str("client_id", c.conn.ID()).Msg("unexpected websocket close")
			}
			return
		}

		// A data frame is as good as a pong for liveness purposes.
		if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		c.hub.HandleFrame(c.conn.ID(), data)
	}
}

// writePump drains the connection's outbox onto the socket and services
// ping requests from the heartbeat sweep. It exits when the outbox closes
// (hub-side disconnect) or a write fails (socket-side disconnect).
func (c *Client) writePump() {
	// Closing the socket here unblocks the read pump after a failed write,
	// so the connection unregisters promptly instead of waiting out the
	// read deadline.
	defer func() { _ = c.Close() }()

	outbox := c.conn.Outbox()

	for {
		select {
		case <-outbox.Ready():
			for {
				ev, ok := outbox.Pop()
				if !ok {
					break
				}
				if !c.writeEvent(ev) {
					return
				}
			}
			if outbox.Closed() {
				c.writeClose()
				return
			}

		case <-c.pingCh:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeEvent marshals and writes one event, reporting whether the pump
// should keep running.
func (c *Client) writeEvent(ev protocol.Event) bool {
	data, err := protocol.MarshalEvent(ev)
	if err != nil {
		logging.Error().Err(err).Str("type", ev.Type).Msg("failed to marshal outbound event")
		return true
	}

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		logging.Debug().Err(err).Str("client_id", c.conn.ID()).Msg("socket write failed")
		return false
	}

	metrics.MessagesSent.Inc()
	return true
}

// writeClose sends a best-effort close frame after a hub-side disconnect.
func (c *Client) writeClose() {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
