package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

// Hub broadcasts critical alerts to connected websocket clients, the
// sound/visual notification path of the operator dashboard. A client that
// cannot keep up is dropped rather than allowed to block the broadcast.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	logger *logging.Logger
}

// NewHub constructs an empty Hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool), logger: logger}
}

func (h *Hub) Name() string { return "websocket" }

// Register adds a client connection and starts draining its read side so
// closes are detected.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Infof("Websocket client connected (%d total)", count)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Infof("Websocket client disconnected (%d total)", count)
}

// Send broadcasts the alert to every connected client. The hub lock is held
// across the writes; gorilla/websocket allows only one concurrent writer per
// connection.
func (h *Hub) Send(ctx context.Context, alert models.Alert) error {
	deadline := time.Now().Add(2 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.SetWriteDeadline(deadline)
		if err := c.WriteJSON(alert); err != nil {
			h.logger.Warnf("Websocket write failed, dropping client: %v", err)
			delete(h.conns, c)
			c.Close()
		}
	}
	return nil
}
