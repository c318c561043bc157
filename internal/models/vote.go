package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote records a user's single anonymous vote in a room.
// At most one Vote exists per (user, room) pair; revoting repoints
// the existing record instead of inserting a second one.
type Vote struct {
	UserID    uuid.UUID `json:"-"` // anonymous: never exposed
	OptionID  uuid.UUID `json:"option_id"`
	RoomID    uuid.UUID `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}
