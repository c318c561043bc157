package models

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a decision room. Participants join by invite code,
// submit options and cast one vote each while the room is open.
type Room struct {
	ID              uuid.UUID   `json:"id"`
	Code            string      `json:"code"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	CreatorID       uuid.UUID   `json:"creator_id"`
	CreatedAt       time.Time   `json:"created_at"`
	IsOpen          bool        `json:"is_open"`
	MaxParticipants int         `json:"max_participants,omitempty"` // 0 = unlimited
	Participants    []uuid.UUID `json:"participants"`               // append-only, ordered, unique
}

// IsParticipant reports whether the user has joined the room.
func (r *Room) IsParticipant(userID uuid.UUID) bool {
	for _, id := range r.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
