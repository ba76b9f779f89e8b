package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-registration/internal/models"
)

type EventDBLayer interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event models.Event) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListParticipants(ctx context.Context, eventID string) ([]models.User, error)
	CountEnrollments(ctx context.Context, eventID string) (int, error)
}

// Publisher streams event lifecycle records to the broker. A nil publisher
// disables streaming.
type Publisher interface {
	PublishEventCreated(event models.Event) error
}

type EventService struct {
	DB       EventDBLayer
	Producer Publisher

	// Now is swappable so the future-date update policy is testable.
	Now func() time.Time
}

func NewEventService(db EventDBLayer, producer Publisher) *EventService {
	return &EventService{DB: db, Producer: producer, Now: time.Now}
}

// CreateEvent admits a new event for an organizer or admin. The venue/room/
// date conflict check runs transactionally in the store. max_pax is taken as
// supplied; a zero-capacity event is admissible and simply never fills.
func (s *EventService) CreateEvent(ctx context.Context, caller *models.Identity, req models.EventRequest) (*models.Event, error) {
	if !caller.Role.May(models.ActionCreateEvent) {
		return nil, models.ErrForbidden
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Date:        req.Date.UTC(),
		Venue:       req.Venue,
		Room:        req.Room,
		Speaker:     req.Speaker,
		Description: req.Description,
		MaxPax:      req.MaxPax,
		OrganizerID: caller.UserID,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	if s.Producer != nil {
		if err := s.Producer.PublishEventCreated(*event); err != nil {
			// The event is committed; a broker hiccup must not fail the call.
			fmt.Printf("failed to publish event created: %v\n", err)
		}
	}
	return event, nil
}

// UpdateEvent replaces all mutable fields. Admins may update any event; the
// owning organizer only while the event date is still in the future.
func (s *EventService) UpdateEvent(ctx context.Context, caller *models.Identity, eventID string, req models.EventRequest) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !s.mayUpdate(caller, event) {
		return nil, models.ErrForbidden
	}

	event.Name = req.Name
	event.Date = req.Date.UTC()
	event.Venue = req.Venue
	event.Room = req.Room
	event.Speaker = req.Speaker
	event.Description = req.Description
	event.MaxPax = req.MaxPax

	if err := s.DB.UpdateEvent(ctx, *event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) mayUpdate(caller *models.Identity, event *models.Event) bool {
	if caller.Role.May(models.ActionUpdateAnyEvent) {
		return true
	}
	return caller.Role == models.RoleOrganizer &&
		caller.UserID == event.OrganizerID &&
		event.Date.After(s.Now())
}

// ListEventsWithParticipants is the admin-only full listing.
func (s *EventService) ListEventsWithParticipants(ctx context.Context, caller *models.Identity) ([]models.EventWithParticipants, error) {
	if !caller.Role.May(models.ActionListAllEvents) {
		return nil, models.ErrForbidden
	}

	events, err := s.DB.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	result := make([]models.EventWithParticipants, 0, len(events))
	for _, event := range events {
		participants, err := s.DB.ListParticipants(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("list participants for event %s: %w", event.ID, err)
		}
		if participants == nil {
			participants = []models.User{}
		}
		result = append(result, models.EventWithParticipants{Event: event, Participants: participants})
	}
	return result, nil
}

// GetEvent returns the summary shape any authenticated caller may see.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.EventSummary, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	count, err := s.DB.CountEnrollments(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	return &models.EventSummary{Event: *event, EnrolledCount: count}, nil
}
