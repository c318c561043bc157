package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/metrics"
	"github.com/eldtechnologies/huddle/internal/models"
	"github.com/eldtechnologies/huddle/internal/tiebreak"
)

// CastVoteRequest represents the vote request.
type CastVoteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// CastVote records the caller's single vote for an option, or moves it if
// the caller voted before. Votes are anonymous; the response never echoes
// who voted for what.
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OptionID == uuid.Nil {
		h.Error(w, http.StatusBadRequest, "option_id is required")
		return
	}

	voted, err := h.store.HasVoted(r.Context(), user.ID, roomID)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	if err := h.store.CastVote(r.Context(), user.ID, roomID, req.OptionID); err != nil {
		h.StoreError(w, err)
		return
	}

	kind := "first"
	if voted {
		kind = "revote"
	}
	metrics.VotesCast.WithLabelValues(kind).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// BallotResponse reports whether the caller has voted in the room. It
// never says for which option.
type BallotResponse struct {
	HasVoted bool `json:"has_voted"`
}

// Ballot returns the caller's voting status in the room.
func (h *Handler) Ballot(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	// Room visibility check first, so outsiders still get 404
	if _, err := h.store.GetRoom(r.Context(), user.ID, roomID); err != nil {
		h.StoreError(w, err)
		return
	}

	voted, err := h.store.HasVoted(r.Context(), user.ID, roomID)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, BallotResponse{HasVoted: voted})
}

// ResultResponse classifies the room's current tally for polling clients.
type ResultResponse struct {
	Status string          `json:"status"` // "no_votes", "winner" or "tie"
	Winner *models.Option  `json:"winner,omitempty"`
	Tied   []models.Option `json:"tied,omitempty"`
}

// Result returns the current tally classification. A tie lists the tied
// options in submission order.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
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

	outcome := tiebreak.Tally(options)
	switch outcome.Kind {
	case tiebreak.Winner:
		h.JSON(w, http.StatusOK, ResultResponse{Status: "winner", Winner: outcome.Winner})
	case tiebreak.Tie:
		h.JSON(w, http.StatusOK, ResultResponse{Status: "tie", Tied: outcome.Tied})
	default:
		h.JSON(w, http.StatusOK, ResultResponse{Status: "no_votes"})
	}
}
