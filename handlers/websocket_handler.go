package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/live"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the portal frontend origin before the fest goes live.
		return true
	},
}

type WebSocketHandler struct {
	hub    *live.Hub
	sports catalog.SportCatalog
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, sports catalog.SportCatalog, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		sports: sports,
		logger: logger,
	}
}

// ServeWs subscribes a client to all fixture updates of one sport. Clients
// connect to /ws/sports/{sport}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	if sport == "" {
		http.Error(w, "Missing sport", http.StatusBadRequest)
		return
	}

	if _, err := h.sports.Get(sport); err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket connection",
			slog.String("sport", sport), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, live.RoomForSport(sport))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
