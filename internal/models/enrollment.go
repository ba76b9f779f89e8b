package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Enrollment struct {
	bun.BaseModel `bun:"table:enrollments,alias:en"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull,unique:user_event" json:"user_id"`
	EventID   string    `bun:"event_id,notnull,unique:user_event" json:"event_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
	User  *User  `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}
