// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/castrio/livehub/internal/protocol"
)

func signalJoin(t *testing.T, h *Hub, c *Connection, showID string, role protocol.Role) {
	t.Helper()
	h.HandleFrame(c.ID(), frame(t, protocol.TypeSignalJoin, protocol.SignalJoin{
		ShowID: showID,
		UserID: "user-" + c.ID()[:8],
		Role:   role,
	}))
}

func TestSignalHostJoinConfirmsWithPeerID(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	drainEvents(host)

	signalJoin(t, h, host, "show-1", protocol.RoleHost)

	evs := drainEvents(host)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("host got %v, want one join confirmation", eventTypes(evs))
	}
	p := evs[0].Payload.(protocol.SignalJoinPayload)
	if p.PeerID != host.ID() || p.Role != protocol.RoleHost || p.ShowID != "show-1" {
		t.Errorf("unexpected join payload: %+v", p)
	}
}

func TestSignalSecondHostRejected(t *testing.T) {
	h := testHub(t)
	first := h.Register(&fakeTransport{})
	second := h.Register(&fakeTransport{})
	drainEvents(first)
	drainEvents(second)

	signalJoin(t, h, first, "show-1", protocol.RoleHost)
	drainEvents(first)

	signalJoin(t, h, second, "show-1", protocol.RoleHost)

	evs := drainEvents(second)
	if len(evs) != 1 || evs[0].Type != protocol.TypeError {
		t.Fatalf("second host got %v, want one error", eventTypes(evs))
	}
	if p := evs[0].Payload.(protocol.SignalErrorPayload); p.Error != "Room already has a host" {
		t.Errorf("error = %q", p.Error)
	}

	// The sitting host is undisturbed and the rejected peer holds no state.
	if evs := drainEvents(first); len(evs) != 0 {
		t.Errorf("sitting host got %v, want nothing", eventTypes(evs))
	}
	if second.signalShow != "" {
		t.Error("rejected host was attached to the signaling room")
	}
}

func TestSignalViewerJoinNotifiesHost(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	viewer := h.Register(&fakeTransport{})
	drainEvents(host)
	drainEvents(viewer)

	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	drainEvents(host)

	signalJoin(t, h, viewer, "show-1", protocol.RoleViewer)

	vEvs := drainEvents(viewer)
	if len(vEvs) != 1 || vEvs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("viewer got %v, want its join confirmation", eventTypes(vEvs))
	}
	if p := vEvs[0].Payload.(protocol.SignalJoinPayload); p.PeerID != viewer.ID() {
		t.Errorf("viewer confirmation carries peer id %q, want %q", p.PeerID, viewer.ID())
	}

	hEvs := drainEvents(host)
	if len(hEvs) != 1 || hEvs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("host got %v, want one viewer join notice", eventTypes(hEvs))
	}
	p := hEvs[0].Payload.(protocol.SignalJoinPayload)
	if p.PeerID != viewer.ID() || p.Role != protocol.RoleViewer {
		t.Errorf("unexpected notice payload: %+v", p)
	}
}

func TestSignalViewerJoinBeforeHostIsAccepted(t *testing.T) {
	h := testHub(t)
	viewer := h.Register(&fakeTransport{})
	drainEvents(viewer)

	signalJoin(t, h, viewer, "show-1", protocol.RoleViewer)

	evs := drainEvents(viewer)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("viewer got %v, want its join confirmation", eventTypes(evs))
	}

	// A host can still claim the room afterwards.
	host := h.Register(&fakeTransport{})
	drainEvents(host)
	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	hEvs := drainEvents(host)
	if len(hEvs) != 1 || hEvs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("host got %v, want its join confirmation", eventTypes(hEvs))
	}
}

func TestSignalOfferRelayedWithSenderPeerID(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	viewer := h.Register(&fakeTransport{})
	drainEvents(host)
	drainEvents(viewer)
	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	signalJoin(t, h, viewer, "show-1", protocol.RoleViewer)
	drainEvents(host)
	drainEvents(viewer)

	sdp := json.RawMessage(`{"type":"offer","sdp":"v=0..."}`)
	h.HandleFrame(host.ID(), frame(t, protocol.TypeSignalOffer, protocol.SignalOffer{
		PeerID: viewer.ID(),
		SDP:    sdp,
	}))

	evs := drainEvents(viewer)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalOffer {
		t.Fatalf("viewer got %v, want one offer", eventTypes(evs))
	}
	p := evs[0].Payload.(protocol.SignalSDPPayload)
	if p.PeerID != host.ID() {
		t.Errorf("offer carries peer id %q, want sender %q", p.PeerID, host.ID())
	}
	if string(p.SDP) != string(sdp) {
		t.Errorf("SDP body was altered: %s", p.SDP)
	}

	// Answer flows back with the viewer's id substituted.
	h.HandleFrame(viewer.ID(), frame(t, protocol.TypeSignalAnswer, protocol.SignalAnswer{
		PeerID: host.ID(),
		SDP:    sdp,
	}))
	hEvs := drainEvents(host)
	if len(hEvs) != 1 || hEvs[0].Type != protocol.TypeSignalAnswer {
		t.Fatalf("host got %v, want one answer", eventTypes(hEvs))
	}
	if p := hEvs[0].Payload.(protocol.SignalSDPPayload); p.PeerID != viewer.ID() {
		t.Errorf("answer carries peer id %q, want %q", p.PeerID, viewer.ID())
	}
}

func TestSignalRelayToUnknownPeerIsSilentlyDropped(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	drainEvents(host)
	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	drainEvents(host)

	h.HandleFrame(host.ID(), frame(t, protocol.TypeSignalICE, protocol.SignalICE{
		PeerID:    "gone-peer",
		Candidate: json.RawMessage(`{"candidate":"..."}`),
	}))

	if evs := drainEvents(host); len(evs) != 0 {
		t.Errorf("sender got %v, want nothing back for a missed relay", eventTypes(evs))
	}
	if h.ConnectionCount() != 1 {
		t.Fatal("missed relay affected the connection")
	}
}

func TestSignalHostLeaveEjectsViewers(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	v1 := h.Register(&fakeTransport{})
	v2 := h.Register(&fakeTransport{})
	for _, c := range []*Connection{host, v1, v2} {
		drainEvents(c)
	}
	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	signalJoin(t, h, v1, "show-1", protocol.RoleViewer)
	signalJoin(t, h, v2, "show-1", protocol.RoleViewer)
	for _, c := range []*Connection{host, v1, v2} {
		drainEvents(c)
	}

	h.HandleFrame(host.ID(), frame(t, protocol.TypeSignalLeave, struct{}{}))

	for i, v := range []*Connection{v1, v2} {
		evs := drainEvents(v)
		if len(evs) != 1 || evs[0].Type != protocol.TypeSignalLeave {
			t.Fatalf("viewer %d got %v, want one leave notice", i, eventTypes(evs))
		}
		p := evs[0].Payload.(protocol.SignalLeavePayload)
		if p.PeerID != host.ID() || p.Role != protocol.RoleHost {
			t.Errorf("viewer %d leave payload = %+v", i, p)
		}
		if v.signalShow != "" {
			t.Errorf("viewer %d still attached to the signaling room", i)
		}
	}

	// The room is gone; a new host starts fresh.
	if h.Snapshot().SignalRooms != 0 {
		t.Fatal("signaling room survived the host leave")
	}
	newHost := h.Register(&fakeTransport{})
	drainEvents(newHost)
	signalJoin(t, h, newHost, "show-1", protocol.RoleHost)
	evs := drainEvents(newHost)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("new host got %v, want its join confirmation", eventTypes(evs))
	}
}

func TestSignalViewerLeaveNotifiesHost(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	viewer := h.Register(&fakeTransport{})
	drainEvents(host)
	drainEvents(viewer)
	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	signalJoin(t, h, viewer, "show-1", protocol.RoleViewer)
	drainEvents(host)
	drainEvents(viewer)

	h.HandleFrame(viewer.ID(), frame(t, protocol.TypeSignalLeave, struct{}{}))

	evs := drainEvents(host)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalLeave {
		t.Fatalf("host got %v, want one leave notice", eventTypes(evs))
	}
	p := evs[0].Payload.(protocol.SignalLeavePayload)
	if p.PeerID != viewer.ID() || p.Role != protocol.RoleViewer {
		t.Errorf("leave payload = %+v", p)
	}

	// The room persists while the host remains.
	if h.Snapshot().SignalRooms != 1 {
		t.Error("signaling room destroyed while host was present")
	}
}

func TestDisconnectRunsSignalingLeave(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	viewer := h.Register(&fakeTransport{})
	drainEvents(host)
	drainEvents(viewer)
	signalJoin(t, h, host, "show-1", protocol.RoleHost)
	signalJoin(t, h, viewer, "show-1", protocol.RoleViewer)
	drainEvents(host)
	drainEvents(viewer)

	// A dropped socket, not an explicit leave.
	h.Unregister(host.ID())

	evs := drainEvents(viewer)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalLeave {
		t.Fatalf("viewer got %v, want one leave notice after host disconnect", eventTypes(evs))
	}
	if h.Snapshot().SignalRooms != 0 {
		t.Error("signaling room survived the host disconnect")
	}
}

func TestSignalViewerMovingBetweenShowsDetachesFromFirst(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	viewer := h.Register(&fakeTransport{})
	drainEvents(host)
	drainEvents(viewer)
	signalJoin(t, h, host, "show-a", protocol.RoleHost)
	signalJoin(t, h, viewer, "show-a", protocol.RoleViewer)
	drainEvents(host)
	drainEvents(viewer)

	signalJoin(t, h, viewer, "show-b", protocol.RoleViewer)

	// The show-a host learns the viewer left; the viewer gets its show-b
	// confirmation.
	evs := drainEvents(host)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalLeave {
		t.Fatalf("show-a host got %v, want one leave notice", eventTypes(evs))
	}
	vEvs := drainEvents(viewer)
	if len(vEvs) != 1 || vEvs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("viewer got %v, want its show-b confirmation", eventTypes(vEvs))
	}
	sr := h.signalRooms["show-a"]
	if sr == nil {
		t.Fatal("show-a room destroyed while its host remained")
	}
	if _, ok := sr.viewers[viewer.ID()]; ok {
		t.Error("viewer still in the show-a viewer set after moving to show-b")
	}

	// After unregister the id is absent from every signaling room.
	h.Unregister(viewer.ID())
	for show, sr := range h.signalRooms {
		if _, ok := sr.viewers[viewer.ID()]; ok {
			t.Errorf("unregistered viewer still in the %s viewer set", show)
		}
	}
	if got := h.Snapshot().SignalRooms; got != 1 {
		t.Errorf("signal rooms = %d, want 1 (show-a only)", got)
	}
}

func TestSignalHostLeaveSparesMovedViewer(t *testing.T) {
	h := testHub(t)
	host := h.Register(&fakeTransport{})
	viewer := h.Register(&fakeTransport{})
	drainEvents(host)
	drainEvents(viewer)
	signalJoin(t, h, host, "show-a", protocol.RoleHost)
	signalJoin(t, h, viewer, "show-a", protocol.RoleViewer)
	signalJoin(t, h, viewer, "show-b", protocol.RoleViewer)
	drainEvents(host)
	drainEvents(viewer)

	h.HandleFrame(host.ID(), frame(t, protocol.TypeSignalLeave, struct{}{}))

	// The show-a teardown must not touch the viewer's show-b association.
	if evs := drainEvents(viewer); len(evs) != 0 {
		t.Errorf("moved viewer got %v from the show-a teardown, want nothing", eventTypes(evs))
	}
	if viewer.signalShow != "show-b" {
		t.Errorf("viewer association = %q, want show-b", viewer.signalShow)
	}

	h.Unregister(viewer.ID())
	if got := h.Snapshot().SignalRooms; got != 0 {
		t.Errorf("signal rooms = %d after last occupant unregistered, want 0", got)
	}
}

func TestSignalViewerBecomingHostLeavesViewerSet(t *testing.T) {
	h := testHub(t)
	c := h.Register(&fakeTransport{})
	drainEvents(c)
	signalJoin(t, h, c, "show-1", protocol.RoleViewer)
	drainEvents(c)

	signalJoin(t, h, c, "show-1", protocol.RoleHost)

	evs := drainEvents(c)
	if len(evs) != 1 || evs[0].Type != protocol.TypeSignalJoin {
		t.Fatalf("got %v, want one host confirmation", eventTypes(evs))
	}
	if p := evs[0].Payload.(protocol.SignalJoinPayload); p.Role != protocol.RoleHost {
		t.Errorf("confirmed role = %q, want host", p.Role)
	}

	sr := h.signalRooms["show-1"]
	if sr == nil {
		t.Fatal("signaling room missing after role switch")
	}
	if sr.hostID != c.ID() {
		t.Errorf("host id = %q, want %q", sr.hostID, c.ID())
	}
	if _, ok := sr.viewers[c.ID()]; ok {
		t.Error("connection remained in the viewer set after becoming host")
	}
}
