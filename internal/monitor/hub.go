package monitor

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"messenger-service/internal/observability"
)

// Hub tracks live-tail websocket watchers of the dashboard. Each connection
// carries its own write mutex: concurrent broadcasts must never write to one
// connection at the same time.
type Hub struct {
	mu       sync.RWMutex
	watchers map[*websocket.Conn]*sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[*websocket.Conn]*sync.Mutex)}
}

// Add registers a watcher connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchers[conn] = &sync.Mutex{}
	observability.IncMonitorWatchers()
}

// Remove unregisters a watcher connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[conn]; ok {
		delete(h.watchers, conn)
		observability.DecMonitorWatchers()
	}
}

// Broadcast pushes a freshly appended record to every watcher. Dead
// connections are dropped on write failure.
func (h *Hub) Broadcast(rec Record) {
	h.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.watchers))
	for conn, writeMu := range h.watchers {
		conns[conn] = writeMu
	}
	h.mu.RUnlock()

	for conn, writeMu := range conns {
		writeMu.Lock()
		err := conn.WriteJSON(rec)
		writeMu.Unlock()
		if err != nil {
			log.Printf("monitor ws write failed: %v", err)
			conn.Close()
			h.Remove(conn)
		}
	}
}

// Watchers returns the current watcher count.
func (h *Hub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}
