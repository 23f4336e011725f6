package ws

import (
	"log/slog"
	"sync"
)

// Hub is the in-memory fan-out index from room name to live connections.
// The per-room slice keeps insertion order, which is also delivery order.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string][]*Client
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{rooms: make(map[string][]*Client), logger: logger}
}

// Register appends the client to its room's connection list, creating the
// list on the room's first connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[c.room] = append(h.rooms[c.room], c)
	h.logger.Info("connection joined room", "room", c.room, "username", c.username, "connections", len(h.rooms[c.room]))
}

// Unregister removes the client if present; a no-op otherwise. The room
// entry is kept even when it becomes empty: a room can legitimately have
// zero live connections while still existing in the registry.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.rooms[c.room]
	for i, other := range clients {
		if other == c {
			h.rooms[c.room] = append(clients[:i], clients[i+1:]...)
			h.logger.Info("connection left room", "room", c.room, "username", c.username, "connections", len(h.rooms[c.room]))
			return
		}
	}
}

// Broadcast delivers payload to every connection registered in the room
// except exclude. Best-effort fan-out: a connection that cannot accept
// the payload is skipped and logged, never aborting delivery to the rest
// and never triggering unregistration.
func (h *Hub) Broadcast(payload []byte, room string, exclude *Client) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.rooms[room]...)
	h.mu.RUnlock()

	for _, c := range clients {
		if c == exclude {
			continue
		}
		if !c.enqueue(payload) {
			h.logger.Warn("dropping frame for slow or closed connection", "room", room, "username", c.username)
		}
	}
}

// Count returns the number of live connections in the room.
func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
