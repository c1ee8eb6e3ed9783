package ws

import (
	"encoding/json"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades connections on GET /ws/{client_id}.
type Handler struct {
	hub      *Hub
	suggest  Suggester
	debounce time.Duration
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the WebSocket endpoint handler.
func NewHandler(hub *Hub, suggest Suggester, debounce time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Handler{
		hub:      hub,
		suggest:  suggest,
		debounce: debounce,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Agent desks are served from a different origin than the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Mount registers the WebSocket route and the connection stats endpoint.
func (h *Handler) Mount(r chirouter.Router) {
	r.Get("/ws/{client_id}", h.handleWS)
	r.Get("/api/ws/stats", h.handleStats)
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.hub.Stats()); err != nil {
		h.logger.Error("encode ws stats", zap.Error(err))
	}
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	clientID := chirouter.URLParam(r, "client_id")
	if clientID == "" {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := newClient(clientID, conn, h.hub, h.suggest, h.debounce, h.logger)
	h.hub.register(client)

	go client.writePump()
	go client.readPump()
}
