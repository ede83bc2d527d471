package handlers

import (
	"log"
	"net/http"

	"task-manager-backend/internal/middleware"
	"task-manager-backend/internal/realtime"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the token is the only gate; see TaskEvents
	},
}

type EventsHandler struct {
	hub    *realtime.Hub
	tokens middleware.TokenValidator
}

func NewEventsHandler(hub *realtime.Hub, tokens middleware.TokenValidator) *EventsHandler {
	return &EventsHandler{hub: hub, tokens: tokens}
}

// TaskEvents upgrades to a websocket that receives the caller's task events.
// Browsers cannot set headers on websocket requests, so the token may also
// come in the "token" query parameter.
func (h *EventsHandler) TaskEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		sendError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		sendError(w, http.StatusForbidden, "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	h.hub.Serve(claims.UserID, conn)
}
