package handlers

import (
	"log/slog"
	"net/http"

	"anonchat/repository"
	"anonchat/ws"
)

// WSHandler hands validated upgrade requests to the session handler.
type WSHandler struct {
	hub    *ws.Hub
	store  repository.Store
	logger *slog.Logger
}

func NewWSHandler(hub *ws.Hub, store repository.Store, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, store: store, logger: logger}
}

func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("name")
	username := r.PathValue("username")
	if room == "" || username == "" {
		respondWithError(w, "Missing parameter", "room name and username path segments are required", http.StatusBadRequest)
		return
	}
	ws.ServeWS(w, r, h.hub, h.store, h.logger, room, username)
}
