package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/deepbox/deepbox/game/engine"
	"github.com/deepbox/deepbox/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Message is a frame pushed to subscribers.
type Message struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session,omitempty"`
	Snapshot  *engine.Snapshot `json:"snapshot,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// clientFrame is a frame a peer may send. Command frames proxy to the
// game service; the resulting state comes back through the normal
// state push.
type clientFrame struct {
	Type      string `json:"type"`
	Command   string `json:"command,omitempty"`   // "move right", "undo", "restart"
	Direction string `json:"direction,omitempty"` // shorthand for a single move
}

// Client represents a WebSocket client subscribed to one session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and pushes state updates.
// All session map access happens on the Run goroutine.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages to a session's subscribers
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Optional command sink for client frames
	service service.GameService
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetService attaches the game service that command frames are proxied
// to. Without it, command frames are rejected.
func (h *Hub) SetService(s service.GameService) {
	h.service = s
}

// Run starts the hub's event loop. It must be running before the hub
// is wired into the service as a notifier.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// NotifyState implements service.StateNotifier. It pushes the snapshot
// to every client subscribed to the session.
func (h *Hub) NotifyState(sessionID string, state *engine.Snapshot) {
	h.broadcast <- &Message{
		Type:      "state",
		SessionID: sessionID,
		Snapshot:  state,
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Infof("WebSocket client joined session %s (%d subscribers)",
		client.sessionID, len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty sessions
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Infof("WebSocket client left session %s (%d remaining)",
				client.sessionID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Warnf("Failed to marshal WebSocket message: %v", err)
		return
	}

	if clients, ok := h.sessions[message.SessionID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, close it
				h.unregisterClient(client)
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnf("WebSocket error: %v", err)
			}
			break
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError(fmt.Errorf("malformed frame: %v", err))
			continue
		}
		if frame.Type == "command" {
			c.handleCommand(frame)
		}
	}
}

// handleCommand proxies a command frame to the game service. Applied
// commands reach this client again through the state push; only
// failures are answered directly.
func (c *Client) handleCommand(frame clientFrame) {
	if c.hub.service == nil {
		c.sendError(fmt.Errorf("commands are not accepted on this connection"))
		return
	}

	ctx := context.Background()
	var err error
	switch {
	case frame.Direction != "":
		_, err = c.hub.service.Move(ctx, c.sessionID, frame.Direction)
	case frame.Command == "undo":
		_, err = c.hub.service.Undo(ctx, c.sessionID)
	case frame.Command == "restart":
		_, err = c.hub.service.Restart(ctx, c.sessionID)
	case strings.HasPrefix(frame.Command, "move "):
		_, err = c.hub.service.Move(ctx, c.sessionID, strings.TrimPrefix(frame.Command, "move "))
	default:
		err = fmt.Errorf("unknown command %q", frame.Command)
	}

	if err != nil {
		c.sendError(err)
	}
}

// sendError answers one client without going through the hub.
func (c *Client) sendError(err error) {
	data, merr := json.Marshal(&Message{
		Type:      "error",
		SessionID: c.sessionID,
		Error:     err.Error(),
	})
	if merr != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
