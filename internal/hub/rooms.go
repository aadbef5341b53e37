// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"time"

	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/metrics"
	"github.com/castrio/livehub/internal/protocol"
)

// room is one broadcast context, created lazily on first join and deleted
// when its member set empties. The viewer count is always len(members);
// it is never tracked independently, so it cannot drift.
type room struct {
	id        string
	showID    string
	members   map[string]struct{}
	createdAt time.Time
}

// joinRoomLocked adds the connection to a room, creating it if absent, and
// returns the new viewer count. Joining never fails. Caller holds the hub
// mutex.
func (h *Hub) joinRoomLocked(c *Connection, roomID, showID string) int {
	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{
			id:        roomID,
			showID:    showID,
			members:   make(map[string]struct{}),
			createdAt: time.Now(),
		}
		h.rooms[roomID] = r
		metrics.Rooms.Inc()
		logging.Info().Str("room_id", roomID).Str("show_id", showID).Msg("room created")
	}

	r.members[c.id] = struct{}{}
	c.rooms[roomID] = struct{}{}
	return len(r.members)
}

// leaveRoomLocked removes the connection from a room, broadcasts the
// updated viewer count to the remaining members, and deletes the room when
// it empties. Caller holds the hub mutex.
func (h *Hub) leaveRoomLocked(c *Connection, roomID string) {
	delete(c.rooms, roomID)

	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(r.members, c.id)

	if len(r.members) == 0 {
		delete(h.rooms, roomID)
		metrics.Rooms.Dec()
		logging.Info().Str("room_id", roomID).Msg("room destroyed")
		return
	}

	h.broadcastLocked(roomID, protocol.NewEvent(protocol.TypeViewerCountUpdate, protocol.ViewerCountUpdatePayload{
		RoomID:      roomID,
		ViewerCount: len(r.members),
	}), c.id)
}

// broadcastLocked fans an event out to every member of a room except the
// optionally excluded connection. Members are visited in id order so
// delivery order is deterministic. Caller holds the hub mutex.
func (h *Hub) broadcastLocked(roomID string, ev protocol.Event, excludeID string) {
	r, ok := h.rooms[roomID]
	if !ok {
		return
	}

	for _, memberID := range sortedKeys(r.members) {
		if memberID == excludeID {
			continue
		}
		if member, ok := h.conns[memberID]; ok {
			h.send(member, ev)
		}
	}
}

// memberIDsLocked returns the member ids of a room in sorted order, or nil
// if the room does not exist. Caller holds the hub mutex.
func (h *Hub) memberIDsLocked(roomID string) []string {
	r, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return sortedKeys(r.members)
}
