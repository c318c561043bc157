package handlers

import (
	"net/http"

	"github.com/eldtechnologies/huddle/internal/api/middleware"
	"github.com/eldtechnologies/huddle/internal/metrics"
	"github.com/eldtechnologies/huddle/internal/models"
	"github.com/eldtechnologies/huddle/internal/tiebreak"
)

// DecisionResponse pairs a decision with the option it selected.
type DecisionResponse struct {
	Decision *models.Decision `json:"decision"`
	Winner   models.Option    `json:"winner"`
}

// Decide records the room's outright winner as its terminal decision.
// Creator only. Fails when the tally is tied or empty; ties go through
// the tiebreak endpoint instead.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
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
	case tiebreak.NoVotes:
		h.Error(w, http.StatusConflict, "no votes have been cast")
		return
	case tiebreak.Tie:
		h.Error(w, http.StatusConflict, "tally is tied, resolve it with a tiebreak")
		return
	}

	decision, err := h.store.CreateDecision(r.Context(), user.ID, roomID, outcome.Winner.ID, models.TiebreakerNone)
	if err != nil {
		h.StoreError(w, err)
		return
	}

	metrics.DecisionsRecorded.WithLabelValues(string(models.TiebreakerNone)).Inc()
	h.JSON(w, http.StatusCreated, DecisionResponse{Decision: decision, Winner: *outcome.Winner})
}

// DecisionsResponse wraps a decision listing.
type DecisionsResponse struct {
	Decisions []models.DecisionView `json:"decisions"`
}

// ListDecisions returns the decisions of the caller's rooms, joined with
// room and winning option.
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	views, err := h.store.ListDecisions(r.Context(), user.ID)
	if err != nil {
		h.StoreError(w, err)
		return
	}
	if views == nil {
		views = []models.DecisionView{}
	}
	h.JSON(w, http.StatusOK, DecisionsResponse{Decisions: views})
}
