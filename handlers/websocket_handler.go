package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ligadelmazo/backend/live"
	"github.com/ligadelmazo/backend/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access is gated by the admin token below, not by origin.
		return true
	},
}

type WebSocketHandler struct {
	hub       *live.Hub
	jwtSecret string
}

func NewWebSocketHandler(hub *live.Hub, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtSecret: jwtSecret}
}

// ServeWs upgrades the connection and attaches it to the live feed. Browsers
// cannot set headers on websocket dials, so the admin token arrives as a
// query parameter.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusForbidden, "No se proporcionó token de autenticación")
		return
	}
	claims, err := middleware.ParseClaims(token, h.jwtSecret)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Token inválido o expirado")
		return
	}
	if !claims.IsAdmin {
		respondError(w, http.StatusForbidden, "Acceso denegado. Solo administradores.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	h.hub.NewClient(conn)
}
