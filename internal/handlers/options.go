package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/metrics"
	"github.com/eldtechnologies/huddle/internal/models"
)

// CreateOptionRequest represents the option submission request.
type CreateOptionRequest struct {
	Text string `json:"text"`
}

// CreateOption appends a candidate option to an open room. Any participant
// may submit.
func (h *Handler) CreateOption(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	var req CreateOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := sanitizeText(req.Text, 200)
	if text == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	option, err := h.store.CreateOption(r.Context(), user.ID, roomID, text)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.OptionsSubmitted.Inc()
	h.JSON(w, http.StatusCreated, option)
}

// OptionsResponse wraps an option listing.
type OptionsResponse struct {
	Options []models.Option `json:"options"`
}

// ListOptions returns the room's options with their current tallies, in
// submission order.
func (h *Handler) ListOptions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	options, err := h.store.ListOptions(r.Context(), user.ID, roomID)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, OptionsResponse{Options: options})
}
