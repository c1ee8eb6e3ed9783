// Package ws implements the live suggestion channel: a WebSocket hub with
// per-client debounce and last-write-wins delivery.
package ws

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/metrics"
)

// Hub is the concurrency-safe registry of connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	ActiveConnections int      `json:"active_connections"`
	ClientIDs         []string `json:"client_ids"`
}

// NewHub creates a client registry.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// register adds a client. A reconnect with the same id replaces the old
// connection, which is closed.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	old, replaced := h.clients[c.id]
	h.clients[c.id] = c
	h.mu.Unlock()

	if replaced {
		old.close()
		h.logger.Info("ws client replaced", zap.String("client_id", c.id))
	} else {
		metrics.WSConnectionsActive.Inc()
		h.logger.Info("ws client connected", zap.String("client_id", c.id))
	}
}

// unregister removes a client; stale entries from replaced connections are
// ignored.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.id]
	if ok && current == c {
		delete(h.clients, c.id)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		metrics.WSConnectionsActive.Dec()
		h.logger.Info("ws client disconnected", zap.String("client_id", c.id))
	}
}

// Stats reports connected clients.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return Stats{
		ActiveConnections: len(h.clients),
		ClientIDs:         ids,
	}
}
