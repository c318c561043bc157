package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/metrics"
	"github.com/eldtechnologies/huddle/internal/models"
	"github.com/eldtechnologies/huddle/internal/tiebreak"
)

// TiebreakRequest picks the randomized method for a tied room.
type TiebreakRequest struct {
	Method models.Tiebreaker `json:"method"`
}

// TiebreakResponse carries the recorded decision plus the raw draw that
// produced it, so clients can replay the dice roll, spin or flip.
type TiebreakResponse struct {
	Decision *models.Decision `json:"decision"`
	Winner   models.Option    `json:"winner"`
	Draw     tiebreak.Draw    `json:"draw"`
}

// Tiebreak resolves a tied room with a single randomized draw and records
// the result as the room's terminal decision. Creator only. The draw that
// decides is the draw reported; there is no second roll.
func (h *Handler) Tiebreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	roomID, ok := h.roomIDParam(w, r)
	if !ok {
		return
	}

	var req TiebreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	switch req.Method {
	case models.TiebreakerDice, models.TiebreakerSpinner, models.TiebreakerCoin:
	default:
		h.Error(w, http.StatusBadRequest, "method must be dice, spinner or coin")
		return
	}

	options, err := h.store.ListOptions(r.Context(), user.ID, roomID)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	outcome := tiebreak.Tally(options)
	if outcome.Kind != tiebreak.Tie {
		h.Error(w, http.StatusConflict, "tally is not tied")
		return
	}

	session, err := tiebreak.NewSession(outcome.Tied)
	if err != nil {
		h.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err := session.Choose(req.Method); err != nil {
		if errors.Is(err, tiebreak.ErrCoinNeedsTwo) {
			h.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := session.Resolve(h.newRNG())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to resolve tiebreak")
		return
	}

	decision, err := h.store.CreateDecision(r.Context(), user.ID, roomID, result.Winner.ID, req.Method)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.DecisionsRecorded.WithLabelValues(string(req.Method)).Inc()
	h.JSON(w, http.StatusCreated, TiebreakResponse{
		Decision: decision,
		Winner:   result.Winner,
		Draw:     result.Draw,
	})
}
