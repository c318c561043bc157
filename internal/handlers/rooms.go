package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/metrics"
	"github.com/eldtechnologies/huddle/internal/models"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	MaxParticipants int    `json:"max_participants,omitempty"` // 0 = unlimited
}

// CreateRoom opens a new decision room with the caller as creator and
// first participant.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	title := sanitizeText(req.Title, 100)
	if title == "" {
		h.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	description := sanitizeText(req.Description, 500)
	if req.MaxParticipants < 0 {
		h.Error(w, http.StatusBadRequest, "max_participants must not be negative")
		return
	}

	room, err := h.store.CreateRoom(r.Context(), user.ID, title, description, req.MaxParticipants)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.RoomsCreated.Inc()
	h.JSON(w, http.StatusCreated, room)
}

// RoomsResponse wraps a room listing.
type RoomsResponse struct {
	Rooms []models.Room `json:"rooms"`
}

// ListRooms returns the rooms the caller participates in.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rooms, err := h.store.ListRooms(r.Context(), user.ID)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	h.JSON(w, http.StatusOK, RoomsResponse{Rooms: rooms})
}

// GetRoom returns one room the caller participates in.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	room, err := h.store.GetRoom(r.Context(), user.ID, roomID)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, room)
}

// JoinRoomRequest represents the join request.
type JoinRoomRequest struct {
	Code string `json:"code"`
}

// JoinRoom adds the caller to the room matching the invite code. Joining
// a room the caller already belongs to returns it unchanged.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) != 6 {
		h.Error(w, http.StatusBadRequest, "code must be 6 characters")
		return
	}

	// An unknown code reads the same as a missing room
	room, err := h.store.JoinRoom(r.Context(), user.ID, code)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.RoomsJoined.Inc()
	h.JSON(w, http.StatusOK, room)
}

// CloseVoting closes the room for further options and votes. Creator only.
func (h *Handler) CloseVoting(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	room, err := h.store.CloseVoting(r.Context(), user.ID, roomID)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, room)
}
