package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
	"github.com/mukhoplus/Masked-StarCraft/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin once the frontend domain is fixed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *gauntlet.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *gauntlet.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs handles GET /ws/tournament. Every client lands on the single
// broadcast topic; payloads are always masked.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &gauntlet.Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Topic: services.TopicTournament,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client connected", slog.String("remote", r.RemoteAddr))
}
