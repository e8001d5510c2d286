package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/talgya/xenopark/internal/game"
)

// Message is the JSON envelope for everything pushed over the socket.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one connected browser tab.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans simulation notifications out to every connected client. It
// implements game.Notifier, so the core pushes through it without knowing
// a transport exists.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// NewHub creates the hub. Run must be started in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub's event loop. Blocks.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			slog.Info("websocket client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client can't keep up; drop the connection.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Notify satisfies game.Notifier by broadcasting a notification envelope.
// Never blocks the simulation; messages are dropped when the broadcast
// buffer is full.
func (h *Hub) Notify(text string, severity game.Severity) {
	h.Push("notification", map[string]any{
		"text":     text,
		"severity": string(severity),
	})
}

// Push broadcasts an arbitrary typed payload to all clients.
func (h *Hub) Push(msgType string, payload any) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		slog.Error("websocket marshal failed", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades an HTTP request to a websocket and registers it.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c
	go c.writePump()
	go c.readPump()
}

// readPump drains the connection. Inbound messages are ignored; the game
// is driven over the REST API. Exiting unregisters the client.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
