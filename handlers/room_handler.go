package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"anonchat/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RoomHandler translates room lifecycle requests into registry calls.
type RoomHandler struct {
	svc *services.RoomService
}

func NewRoomHandler(s *services.RoomService) *RoomHandler { return &RoomHandler{svc: s} }

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomName      string `json:"room_name"`
		Password      string `json:"password"`
		Username      string `json:"username"`
		ExpireMinutes int    `json:"expire_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}
	if req.RoomName == "" || req.Username == "" {
		respondWithError(w, "Missing fields", "room_name and username are required", http.StatusBadRequest)
		return
	}
	if req.ExpireMinutes <= 0 {
		respondWithError(w, "Invalid expiry", services.ErrInvalidExpiry.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Create(r.Context(), req.RoomName, req.Password, req.Username, req.ExpireMinutes); err != nil {
		respondRoomError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"room_name": req.RoomName})
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomName string `json:"room_name"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}
	if req.RoomName == "" || req.Username == "" {
		respondWithError(w, "Missing fields", "room_name and username are required", http.StatusBadRequest)
		return
	}

	view, err := h.svc.Join(r.Context(), req.RoomName, req.Password, req.Username)
	if err != nil {
		respondRoomError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"room_name":    view.Name,
		"has_password": view.HasPassword,
	})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		respondRoomError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"room_name":    view.Name,
		"users":        view.Users,
		"expire_at":    view.ExpireAt.UTC().Format(time.RFC3339),
		"has_password": view.HasPassword,
	})
}

func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Leave(r.Context(), r.PathValue("name"), r.PathValue("username")); err != nil {
		respondWithError(w, "Internal error", "Failed to leave room", http.StatusInternalServerError)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Left room successfully"})
}

// respondRoomError maps the registry error taxonomy onto HTTP status codes.
func respondRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		respondWithError(w, "Room not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrRoomExpired):
		respondWithError(w, "Room has expired", err.Error(), http.StatusGone)
	case errors.Is(err, services.ErrWrongPassword):
		respondWithError(w, "Incorrect password", err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrRoomExists), errors.Is(err, services.ErrInvalidExpiry):
		respondWithError(w, "Invalid request", err.Error(), http.StatusBadRequest)
	default:
		respondWithError(w, "Internal error", err.Error(), http.StatusInternalServerError)
	}
}

func respondWithError(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
