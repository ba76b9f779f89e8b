package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Date        time.Time `bun:"date,notnull,unique:venue_room_date" json:"date"`
	Venue       string    `bun:"venue,notnull,unique:venue_room_date" json:"venue"`
	Room        string    `bun:"room,notnull,unique:venue_room_date" json:"room"`
	Speaker     string    `bun:"speaker,nullzero" json:"speaker,omitempty"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	MaxPax      int       `bun:"max_pax,notnull" json:"max_pax"`
	OrganizerID string    `bun:"organizer_id,notnull" json:"organizer_id"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// EventRequest carries the mutable event fields for create and update.
// Updates are a full replace, not a partial patch.
type EventRequest struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
	Room        string    `json:"room"`
	Speaker     string    `json:"speaker,omitempty"`
	Description string    `json:"description,omitempty"`
	MaxPax      int       `json:"max_pax"`
}

// EventSummary is the event shape returned to non-admin callers.
type EventSummary struct {
	Event
	EnrolledCount int `json:"enrolled_count"`
}

// EventWithParticipants is the admin listing shape. Participants is always
// present (possibly empty), never an ad-hoc optional blob.
type EventWithParticipants struct {
	Event
	Participants []User `json:"participants"`
}
