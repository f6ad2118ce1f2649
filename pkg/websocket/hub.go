// Package websocket streams server events to browser clients over websocket
// connections.
package websocket

import (
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub keeps the connected clients and fans messages out to them. Clients that
// cannot keep up are disconnected rather than blocking the broadcaster.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// HubConfig holds hub configuration.
type HubConfig struct {
	// AllowedOrigins restricts the Origin header of upgrade requests. Empty or
	// "*" accepts any origin.
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewHub creates a hub.
func NewHub(cfg *HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeHTTP upgrades the request and registers the connection as a client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an error status.
		h.logger.Warn("websocket-upgrade-failed", zap.Error(err))
		return
	}

	c := newClient(uuid.New().String(), conn, h)
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c] = struct{}{}
	ActiveClients.Inc()
	ConnectionsTotal.Inc()
	h.logger.Info("websocket-client-connected",
		zap.String("client-id", c.id),
		zap.Int("client-count", len(h.clients)))

	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	ActiveClients.Dec()
	h.logger.Info("websocket-client-disconnected",
		zap.String("client-id", c.id),
		zap.Int("client-count", len(h.clients)))
}

// Broadcast sends a message of msgType carrying data to every client.
func (h *Hub) Broadcast(msgType string, data any) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.Error("websocket-encode-failed", zap.String("type", msgType), zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients {
		select {
		case c.send <- payload:
			MessagesSentTotal.Inc()
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		MessagesDroppedTotal.Inc()
		h.logger.Warn("websocket-client-too-slow", zap.String("client-id", c.id))
		h.unregister(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		ActiveClients.Dec()
	}
	h.logger.Info("websocket-hub-closed")

	return nil
}
