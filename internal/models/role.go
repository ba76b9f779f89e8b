package models

import "fmt"

// Role is the closed set of account roles. Ad-hoc string comparisons are not
// allowed outside this file; use the constants and the May table.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "event_organizer"
	RoleParticipant Role = "participant"
)

// ParseRole validates a role supplied at the signup boundary.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOrganizer, RoleParticipant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
	}
}

// Action names a policy-gated operation.
type Action string

const (
	ActionCreateEvent     Action = "create_event"
	ActionUpdateAnyEvent  Action = "update_any_event"
	ActionListAllEvents   Action = "list_all_events"
	ActionListAllUsers    Action = "list_all_users"
	ActionRemoveOrganizer Action = "remove_organizer"
	ActionEnrollSelf      Action = "enroll_self"
)

// May is the authorization policy table. Ownership-aware decisions (an
// organizer updating their own future event) live in the event service, which
// also consults this table for the role-only part.
func (r Role) May(a Action) bool {
	if r == RoleAdmin {
		return true
	}
	switch a {
	case ActionCreateEvent:
		return r == RoleOrganizer
	case ActionEnrollSelf:
		return r == RoleOrganizer || r == RoleParticipant
	default:
		return false
	}
}
