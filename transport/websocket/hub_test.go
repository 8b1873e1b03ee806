package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/service"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}

	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}

	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}

	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.sessions["test-session"]; !exists {
		t.Error("Session was not created")
	}

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}

	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
	client2 := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}

	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub()

	sub1 := &Client{hub: hub, sessionID: "game-a", send: make(chan []byte, 256)}
	sub2 := &Client{hub: hub, sessionID: "game-a", send: make(chan []byte, 256)}
	other := &Client{hub: hub, sessionID: "game-b", send: make(chan []byte, 256)}

	hub.registerClient(sub1)
	hub.registerClient(sub2)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		Type:      "state",
		SessionID: "game-a",
		Snapshot:  &engine.Snapshot{Name: "Corridor", MoveCount: 2},
	})

	for _, c := range []*Client{sub1, sub2} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			if msg.Type != "state" || msg.SessionID != "game-a" {
				t.Errorf("Unexpected message: %+v", msg)
			}
			if msg.Snapshot == nil || msg.Snapshot.MoveCount != 2 {
				t.Error("Snapshot not correctly transmitted")
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("Subscriber did not receive the state push")
		}
	}

	select {
	case <-other.send:
		t.Error("Client of another session received the push")
	default:
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()

	// A send channel with no capacity and no reader.
	slow := &Client{hub: hub, sessionID: "game-a", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{
		Type:      "state",
		SessionID: "game-a",
		Snapshot:  &engine.Snapshot{},
	})

	if _, exists := hub.sessions["game-a"]; exists {
		t.Error("A client that cannot keep up should be dropped")
	}
}

// stubService records proxied commands; everything else is inert.
type stubService struct {
	moves    chan string
	undos    chan string
	restarts chan string
}

func newStubService() *stubService {
	return &stubService{
		moves:    make(chan string, 8),
		undos:    make(chan string, 8),
		restarts: make(chan string, 8),
	}
}

func (s *stubService) CreateSession(ctx context.Context, levelID string) (*service.SessionInfo, error) {
	return nil, nil
}
func (s *stubService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	return nil, nil
}
func (s *stubService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	return nil, nil
}
func (s *stubService) DeleteSession(ctx context.Context, sessionID string) error { return nil }

func (s *stubService) Move(ctx context.Context, sessionID, direction string) (*service.CommandResult, error) {
	s.moves <- sessionID + ":" + direction
	return &service.CommandResult{Outcome: string(engine.OutcomeApplied)}, nil
}

func (s *stubService) PlayMoves(ctx context.Context, sessionID, moves string) (*service.BulkResult, error) {
	return &service.BulkResult{}, nil
}

func (s *stubService) Undo(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	s.undos <- sessionID
	return &service.CommandResult{Outcome: string(engine.OutcomeApplied)}, nil
}

func (s *stubService) Restart(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	s.restarts <- sessionID
	return &service.CommandResult{Outcome: string(engine.OutcomeApplied)}, nil
}

func (s *stubService) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	return &engine.Snapshot{}, nil
}
func (s *stubService) Render(ctx context.Context, sessionID string) (string, error)  { return "", nil }
func (s *stubService) GetDump(ctx context.Context, sessionID string) (string, error) { return "", nil }
func (s *stubService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	return &service.HistoryResponse{}, nil
}
func (s *stubService) ListLevels(ctx context.Context) ([]*service.LevelInfo, error) {
	return nil, nil
}
func (s *stubService) GetLevel(ctx context.Context, levelID string) (*engine.Definition, error) {
	return nil, nil
}

// dialTestHub starts a hub with an HTTP server in front of it and
// returns a connected client.
func dialTestHub(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Give some time for registration
	time.Sleep(20 * time.Millisecond)
	return conn
}

func TestNotifyStatePushesToConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "push-test")

	hub.NotifyState("push-test", &engine.Snapshot{Name: "Corridor", MoveCount: 7})

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if msg.Type != "state" {
		t.Errorf("Expected type 'state', got %s", msg.Type)
	}
	if msg.SessionID != "push-test" {
		t.Errorf("Expected session 'push-test', got %s", msg.SessionID)
	}
	if msg.Snapshot == nil || msg.Snapshot.MoveCount != 7 {
		t.Error("Snapshot not correctly received")
	}
}

func TestCommandFrameProxiesToService(t *testing.T) {
	hub := NewHub()
	svc := newStubService()
	hub.SetService(svc)
	go hub.Run()

	conn := dialTestHub(t, hub, "cmd-test")

	frame := map[string]string{"type": "command", "direction": "right"}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("Failed to send command frame: %v", err)
	}

	select {
	case got := <-svc.moves:
		if got != "cmd-test:right" {
			t.Errorf("Expected move 'cmd-test:right', got %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Error("Move was not proxied to the service")
	}

	if err := conn.WriteJSON(map[string]string{"type": "command", "command": "undo"}); err != nil {
		t.Fatalf("Failed to send undo frame: %v", err)
	}

	select {
	case got := <-svc.undos:
		if got != "cmd-test" {
			t.Errorf("Expected undo for 'cmd-test', got %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Error("Undo was not proxied to the service")
	}
}

func TestUnknownCommandAnswersError(t *testing.T) {
	hub := NewHub()
	hub.SetService(newStubService())
	go hub.Run()

	conn := dialTestHub(t, hub, "err-test")

	if err := conn.WriteJSON(map[string]string{"type": "command", "command": "fly"}); err != nil {
		t.Fatalf("Failed to send command frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if msg.Type != "error" {
		t.Errorf("Expected type 'error', got %s", msg.Type)
	}
	if !strings.Contains(msg.Error, "unknown command") {
		t.Errorf("Expected an unknown command error, got %q", msg.Error)
	}
}

func TestDisconnectCleansUp(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "bye-test")
	conn.Close()

	// Give some time for unregistration
	time.Sleep(50 * time.Millisecond)

	// A push to the emptied session must not block or panic.
	done := make(chan struct{})
	go func() {
		hub.NotifyState("bye-test", &engine.Snapshot{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("NotifyState blocked after the last client left")
	}
}
