package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ms-registration/internal/events"
	"ms-registration/internal/models"
)

// MockEventDB is a hand-rolled mock of the EventDBLayer interface.
type MockEventDB struct {
	events        map[string]*models.Event
	participants  map[string][]models.User
	counts        map[string]int
	shouldFailOn  string
	errorToReturn error
}

func NewMockEventDB() *MockEventDB {
	return &MockEventDB{
		events:       make(map[string]*models.Event),
		participants: make(map[string][]models.User),
		counts:       make(map[string]int),
	}
}

func (m *MockEventDB) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	if m.shouldFailOn == "GetEventByID" {
		return nil, m.errorToReturn
	}
	event, exists := m.events[id]
	if !exists {
		return nil, models.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (m *MockEventDB) CreateEvent(_ context.Context, event *models.Event) error {
	if m.shouldFailOn == "CreateEvent" {
		return m.errorToReturn
	}
	for _, existing := range m.events {
		if existing.Venue == event.Venue && existing.Room == event.Room && existing.Date.Equal(event.Date) {
			return models.ErrEventConflict
		}
	}
	m.events[event.ID] = event
	return nil
}

func (m *MockEventDB) UpdateEvent(_ context.Context, event models.Event) error {
	if m.shouldFailOn == "UpdateEvent" {
		return m.errorToReturn
	}
	if _, exists := m.events[event.ID]; !exists {
		return models.ErrEventNotFound
	}
	m.events[event.ID] = &event
	return nil
}

func (m *MockEventDB) ListEvents(_ context.Context) ([]models.Event, error) {
	var list []models.Event
	for _, event := range m.events {
		list = append(list, *event)
	}
	return list, nil
}

func (m *MockEventDB) ListParticipants(_ context.Context, eventID string) ([]models.User, error) {
	return m.participants[eventID], nil
}

func (m *MockEventDB) CountEnrollments(_ context.Context, eventID string) (int, error) {
	return m.counts[eventID], nil
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newService(db *MockEventDB) *events.EventService {
	svc := events.NewEventService(db, nil)
	svc.Now = fixedNow
	return svc
}

func organizer(id string) *models.Identity {
	return &models.Identity{UserID: id, Email: id + "@example.com", Role: models.RoleOrganizer}
}

func admin() *models.Identity {
	return &models.Identity{UserID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
}

func participant() *models.Identity {
	return &models.Identity{UserID: "user-1", Email: "user@example.com", Role: models.RoleParticipant}
}

func eventRequest(date time.Time) models.EventRequest {
	return models.EventRequest{
		Name:   "Test Event",
		Date:   date,
		Venue:  "Main Hall",
		Room:   "A",
		MaxPax: 50,
	}
}

func TestCreateEventPolicy(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)
	date := fixedNow().Add(24 * time.Hour)

	// Organizers and admins may create; participants may not.
	event, err := svc.CreateEvent(context.Background(), organizer("org-1"), eventRequest(date))
	require.NoError(t, err)
	require.Equal(t, "org-1", event.OrganizerID)

	_, err = svc.CreateEvent(context.Background(), participant(), eventRequest(date.Add(time.Hour)))
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.CreateEvent(context.Background(), admin(), eventRequest(date.Add(2*time.Hour)))
	require.NoError(t, err)
}

func TestCreateEventConflict(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)
	date := fixedNow().Add(24 * time.Hour)

	_, err := svc.CreateEvent(context.Background(), organizer("org-1"), eventRequest(date))
	require.NoError(t, err)

	_, err = svc.CreateEvent(context.Background(), organizer("org-2"), eventRequest(date))
	require.ErrorIs(t, err, models.ErrEventConflict)
}

func TestUpdateEventOwnerFutureOnly(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)

	future := fixedNow().Add(24 * time.Hour)
	created, err := svc.CreateEvent(context.Background(), organizer("org-1"), eventRequest(future))
	require.NoError(t, err)

	update := eventRequest(future)
	update.Name = "Renamed"

	// The owner may update a future event.
	updated, err := svc.UpdateEvent(context.Background(), organizer("org-1"), created.ID, update)
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	// A different organizer may not.
	_, err = svc.UpdateEvent(context.Background(), organizer("org-2"), created.ID, update)
	require.ErrorIs(t, err, models.ErrForbidden)

	// A participant may not.
	_, err = svc.UpdateEvent(context.Background(), participant(), created.ID, update)
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestUpdatePastEventOwnerForbiddenAdminAllowed(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)

	past := fixedNow().Add(-24 * time.Hour)
	db.events["event-1"] = &models.Event{
		ID:          "event-1",
		Name:        "Past Event",
		Date:        past,
		Venue:       "Main Hall",
		Room:        "A",
		MaxPax:      50,
		OrganizerID: "org-1",
	}

	update := eventRequest(past)
	update.Description = "Updated description"

	_, err := svc.UpdateEvent(context.Background(), organizer("org-1"), "event-1", update)
	require.ErrorIs(t, err, models.ErrForbidden)

	updated, err := svc.UpdateEvent(context.Background(), admin(), "event-1", update)
	require.NoError(t, err)
	require.Equal(t, "Updated description", updated.Description)
}

func TestUpdateMissingEvent(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)

	_, err := svc.UpdateEvent(context.Background(), admin(), "missing", eventRequest(fixedNow()))
	require.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestListEventsAdminOnly(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)

	future := fixedNow().Add(24 * time.Hour)
	created, err := svc.CreateEvent(context.Background(), organizer("org-1"), eventRequest(future))
	require.NoError(t, err)
	db.participants[created.ID] = []models.User{{ID: "user-1"}}

	_, err = svc.ListEventsWithParticipants(context.Background(), organizer("org-1"))
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.ListEventsWithParticipants(context.Background(), participant())
	require.ErrorIs(t, err, models.ErrForbidden)

	list, err := svc.ListEventsWithParticipants(context.Background(), admin())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Participants, 1)
}

func TestGetEventSummary(t *testing.T) {
	db := NewMockEventDB()
	svc := newService(db)

	future := fixedNow().Add(24 * time.Hour)
	created, err := svc.CreateEvent(context.Background(), organizer("org-1"), eventRequest(future))
	require.NoError(t, err)
	db.counts[created.ID] = 3

	summary, err := svc.GetEvent(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 3, summary.EnrolledCount)

	_, err = svc.GetEvent(context.Background(), "missing")
	require.ErrorIs(t, err, models.ErrEventNotFound)
}
