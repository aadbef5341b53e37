// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/castrio/livehub/internal/config"
	"github.com/castrio/livehub/internal/hub"
	"github.com/castrio/livehub/internal/logging"
	"github.com/castrio/livehub/internal/protocol"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, Host: "127.0.0.1"},
		Hub: config.HubConfig{
			RateLimitMessages: 100,
			RateLimitWindow:   time.Minute,
			HeartbeatInterval: time.Minute,
			IdleSweepInterval: time.Minute,
			IdleTimeout:       time.Minute,
			OutboxSize:        64,
			MaxMessageSize:    64 * 1024,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
		Logging: config.LoggingConfig{Level: "disabled", Format: "json"},
	}
}

// testServer starts the full route tree over httptest and returns the
// WebSocket URL.
func testServer(t *testing.T, cfg *config.Config) (*httptest.Server, *hub.Hub, string) {
	t.Helper()
	h := hub.New(cfg.Hub)
	srv := httptest.NewServer(NewRouter(h, cfg).Setup())
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return srv, h, wsURL
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// readEnvelope reads one frame with a deadline so a missing message fails
// fast instead of hanging the test.
func readEnvelope(t *testing.T, ws *websocket.Conn) protocol.Envelope {
	t.Helper()
	if err := ws.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return env
}

func sendEnvelope(t *testing.T, ws *websocket.Conn, messageType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(protocol.Envelope{Type: messageType, Payload: raw})
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocketConnectAndJoin(t *testing.T) {
	_, _, wsURL := testServer(t, testConfig())
	ws := dial(t, wsURL)

	env := readEnvelope(t, ws)
	if env.Type != protocol.TypeConnected {
		t.Fatalf("first frame = %q, want connected", env.Type)
	}
	var connected protocol.ConnectedPayload
	if err := json.Unmarshal(env.Payload, &connected); err != nil {
		t.Fatal(err)
	}
	if connected.ClientID == "" {
		t.Fatal("connected frame carries no client id")
	}

	sendEnvelope(t, ws, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "show-1"})
	env = readEnvelope(t, ws)
	if env.Type != protocol.TypeJoinedRoom {
		t.Fatalf("got %q, want joined_room", env.Type)
	}
	var joined protocol.JoinedRoomPayload
	if err := json.Unmarshal(env.Payload, &joined); err != nil {
		t.Fatal(err)
	}
	if joined.RoomID != "show-1" || joined.ViewerCount != 1 {
		t.Errorf("joined payload = %+v", joined)
	}
}

func TestWebSocketChatBetweenClients(t *testing.T) {
	_, _, wsURL := testServer(t, testConfig())
	alice := dial(t, wsURL)
	bob := dial(t, wsURL)
	readEnvelope(t, alice) // connected
	readEnvelope(t, bob)   // connected

	sendEnvelope(t, alice, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "show-1"})
	readEnvelope(t, alice) // joined_room
	sendEnvelope(t, bob, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "show-1"})
	readEnvelope(t, bob)   // joined_room
	readEnvelope(t, alice) // viewer_count_update

	sendEnvelope(t, alice, protocol.TypeChatMessage, protocol.ChatMessage{
		RoomID:   "show-1",
		Message:  "hello from alice",
		UserName: "Alice",
	})

	for name, ws := range map[string]*websocket.Conn{"sender": alice, "member": bob} {
		env := readEnvelope(t, ws)
		if env.Type != protocol.TypeChatMessage {
			t.Fatalf("%s got %q, want chat_message", name, env.Type)
		}
		var chat protocol.ChatMessagePayload
		if err := json.Unmarshal(env.Payload, &chat); err != nil {
			t.Fatal(err)
		}
		if chat.Message != "hello from alice" || chat.UserName != "Alice" {
			t.Errorf("%s chat payload = %+v", name, chat)
		}
	}
}

func TestWebSocketSignalingRelay(t *testing.T) {
	_, _, wsURL := testServer(t, testConfig())
	host := dial(t, wsURL)
	viewer := dial(t, wsURL)

	var hostConnected, viewerConnected protocol.ConnectedPayload
	env := readEnvelope(t, host)
	if err := json.Unmarshal(env.Payload, &hostConnected); err != nil {
		t.Fatal(err)
	}
	env = readEnvelope(t, viewer)
	if err := json.Unmarshal(env.Payload, &viewerConnected); err != nil {
		t.Fatal(err)
	}

	sendEnvelope(t, host, protocol.TypeSignalJoin, protocol.SignalJoin{ShowID: "show-1", Role: protocol.RoleHost})
	readEnvelope(t, host) // own join confirmation

	sendEnvelope(t, viewer, protocol.TypeSignalJoin, protocol.SignalJoin{ShowID: "show-1", Role: protocol.RoleViewer})
	readEnvelope(t, viewer) // own join confirmation

	// Host learns the viewer's peer id from the join notice.
	env = readEnvelope(t, host)
	var notice protocol.SignalJoinPayload
	if err := json.Unmarshal(env.Payload, &notice); err != nil {
		t.Fatal(err)
	}
	if notice.PeerID != viewerConnected.ClientID {
		t.Fatalf("join notice peer id = %q, want %q", notice.PeerID, viewerConnected.ClientID)
	}

	sendEnvelope(t, host, protocol.TypeSignalOffer, protocol.SignalOffer{
		PeerID: notice.PeerID,
		SDP:    json.RawMessage(`{"type":"offer","sdp":"v=0"}`),
	})

	env = readEnvelope(t, viewer)
	if env.Type != protocol.TypeSignalOffer {
		t.Fatalf("viewer got %q, want offer", env.Type)
	}
	var offer protocol.SignalSDPPayload
	if err := json.Unmarshal(env.Payload, &offer); err != nil {
		t.Fatal(err)
	}
	if offer.PeerID != hostConnected.ClientID {
		t.Errorf("relayed offer peer id = %q, want host %q", offer.PeerID, hostConnected.ClientID)
	}
}

func TestWebSocketMalformedFrameKeepsConnection(t *testing.T) {
	_, _, wsURL := testServer(t, testConfig())
	ws := dial(t, wsURL)
	readEnvelope(t, ws) // connected

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{broken")); err != nil {
		t.Fatal(err)
	}

	env := readEnvelope(t, ws)
	if env.Type != protocol.TypeError {
		t.Fatalf("got %q, want error", env.Type)
	}

	// Still connected and usable.
	sendEnvelope(t, ws, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "r"})
	if env := readEnvelope(t, ws); env.Type != protocol.TypeJoinedRoom {
		t.Fatalf("got %q after error, want joined_room", env.Type)
	}
}

func TestDisconnectCleansUpHubState(t *testing.T) {
	_, h, wsURL := testServer(t, testConfig())
	ws := dial(t, wsURL)
	readEnvelope(t, ws)
	sendEnvelope(t, ws, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "show-1"})
	readEnvelope(t, ws)

	_ = ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ConnectionCount() == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if h.ConnectionCount() != 0 {
		t.Fatal("hub still holds the connection after socket close")
	}
	if stats := h.Snapshot(); stats.Rooms != 0 {
		t.Errorf("rooms = %d after disconnect, want 0", stats.Rooms)
	}
}

func TestUpgradeRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.UpgradeRateLimit = 1
	cfg.Security.UpgradeRateWindow = time.Minute
	_, _, wsURL := testServer(t, cfg)

	dial(t, wsURL)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("second upgrade within the window was accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second upgrade response = %+v, want 429", resp)
	}
}

func TestHealthAndStatsEndpoints(t *testing.T) {
	srv, _, wsURL := testServer(t, testConfig())
	ws := dial(t, wsURL)
	readEnvelope(t, ws)
	sendEnvelope(t, ws, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "show-1"})
	readEnvelope(t, ws)

	resp, err := http.Get(srv.URL + "/api/v1/health/live")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health/live status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()

	var stats hub.Stats
	if err := json.NewDecoder(resp2.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Connections != 1 || stats.Rooms != 1 {
		t.Errorf("stats = %+v, want 1 connection and 1 room", stats)
	}
	if resp2.Header.Get("X-Request-ID") == "" {
		t.Error("stats response missing X-Request-ID header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := testServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "livehub_connections") {
		t.Error("metrics exposition missing livehub_connections")
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		host    string
		want    bool
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "https://evil.example", want: true},
		{name: "no origin header", origins: []string{"https://shop.example"}, origin: "", want: true},
		{name: "allowlisted", origins: []string{"https://shop.example"}, origin: "https://shop.example", want: true},
		{name: "case insensitive", origins: []string{"https://Shop.example"}, origin: "https://shop.example", want: true},
		{name: "not allowlisted", origins: []string{"https://shop.example"}, origin: "https://evil.example", want: false},
		{name: "same origin", origins: []string{"https://other.example"}, origin: "https://api.example", host: "api.example", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Security.CORSOrigins = tt.origins
			handler := NewHandler(hub.New(cfg.Hub), cfg)

			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.host != "" {
				r.Host = tt.host
			}

			if got := handler.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}
