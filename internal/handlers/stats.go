package handlers

import (
	"net/http"
)

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	TotalRooms     int64 `json:"total_rooms"`
	TotalVotes     int64 `json:"total_votes"`
	TotalDecisions int64 `json:"total_decisions"`
}

// Stats returns platform aggregates for the landing page. Nothing here is
// per-room; room contents stay behind participation checks.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.store.CountUsers(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count users")
		return
	}

	totalRooms, err := h.store.CountRooms(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count rooms")
		return
	}

	totalVotes, err := h.store.CountVotes(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count votes")
		return
	}

	totalDecisions, err := h.store.CountDecisions(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count decisions")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:     totalUsers,
		TotalRooms:     totalRooms,
		TotalVotes:     totalVotes,
		TotalDecisions: totalDecisions,
	})
}
