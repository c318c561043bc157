package models

import (
	"time"

	"github.com/google/uuid"
)

// Tiebreaker identifies the randomized method used to resolve a tie.
type Tiebreaker string

const (
	TiebreakerDice    Tiebreaker = "dice"
	TiebreakerSpinner Tiebreaker = "spinner"
	TiebreakerCoin    Tiebreaker = "coin"
	TiebreakerNone    Tiebreaker = "none"
)

// Valid reports whether t is a known tiebreaker tag.
func (t Tiebreaker) Valid() bool {
	switch t {
	case TiebreakerDice, TiebreakerSpinner, TiebreakerCoin, TiebreakerNone:
		return true
	}
	return false
}

// Decision is the terminal record of a room: exactly one per room,
// and creating it closes the room.
type Decision struct {
	ID              uuid.UUID  `json:"id"`
	RoomID          uuid.UUID  `json:"room_id"`
	WinningOptionID uuid.UUID  `json:"winning_option_id"`
	Tiebreaker      Tiebreaker `json:"tiebreaker"`
	ResolvedAt      time.Time  `json:"resolved_at"`
}

// DecisionView joins a decision with its room and winning option for
// dashboard-style listings.
type DecisionView struct {
	Decision
	Room   Room   `json:"room"`
	Option Option `json:"option"`
}
