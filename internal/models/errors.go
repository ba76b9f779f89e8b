package models

import "errors"

// Rejection kinds surfaced by the services. Handlers translate these to
// status codes; the services never produce transport-specific artifacts.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrForbidden       = errors.New("not authorized")
	ErrUnauthenticated = errors.New("invalid or missing credentials")

	// ErrEventConflict: another event already occupies the same venue, room
	// and date. Equality is exact, not interval overlap.
	ErrEventConflict = errors.New("event conflict detected")

	// ErrEventFull: the enrollment would exceed the event's max_pax.
	ErrEventFull = errors.New("event capacity reached")

	// ErrScheduleConflict: the user already holds an enrollment for another
	// event at the same date-time.
	ErrScheduleConflict = errors.New("user already enrolled at this date")

	ErrAlreadyEnrolled    = errors.New("user already enrolled in this event")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")
)
