// Package telemetry streams live match state to WebSocket spectators. The
// hub fans match snapshots out to every connected client; slow clients drop
// frames rather than stalling the match loop.
package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventMatchStarted = "match_started"
	EventSnapshot     = "snapshot"
	EventMatchEnded   = "match_ended"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Data    any    `json:"data"`
}

// WSConn wraps one spectator connection.
type WSConn struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub manages spectator connections.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{connections: make(map[*WSConn]bool)}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	close(c.send)
}

// Broadcast sends an event to every spectator. Full buffers drop the frame.
func (h *Hub) Broadcast(event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal telemetry event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("type", event.Type).Msg("Dropping telemetry frame, buffer full")
		}
	}
}

// ConnectionCount returns the number of active spectator connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
