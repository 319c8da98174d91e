package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message types pushed to clients.
const (
	TypeSessionUpdated   = "session_updated"
	TypeSessionDeleted   = "session_deleted"
	TypePreviewRefreshed = "preview_refreshed"
	TypeSettingsUpdated  = "settings_updated"
)

// Message is a live-update notification. Messages with a SessionID only reach
// clients watching that session (or watching everything).
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// NewMessage creates a Message for sessionID; an empty id addresses everyone.
func NewMessage(typ, sessionID string, data any) Message {
	return Message{Type: typ, SessionID: sessionID, Data: data}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client interested in it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(msg.SessionID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block the editor.
			h.logger.Debug("dropped message for slow client", "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
