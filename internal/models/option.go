package models

import (
	"time"

	"github.com/google/uuid"
)

// Option is a candidate submitted to a room. Votes is a running tally
// mutated only through the store's vote operation.
type Option struct {
	ID          uuid.UUID `json:"id"`
	RoomID      uuid.UUID `json:"room_id"`
	Text        string    `json:"text"`
	SubmittedBy uuid.UUID `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
	Votes       int       `json:"votes"`
}
