package enrollments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-registration/internal/models"
)

type EnrollmentDBLayer interface {
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	Unenroll(ctx context.Context, userID, eventID string) (*models.Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
}

// Publisher streams enrollment lifecycle records to the broker. A nil
// publisher disables streaming.
type Publisher interface {
	PublishEnrollmentCreated(enrollment models.Enrollment) error
	PublishEnrollmentCancelled(enrollment models.Enrollment) error
}

type EnrollmentService struct {
	DB       EnrollmentDBLayer
	Producer Publisher
}

func NewEnrollmentService(db EnrollmentDBLayer, producer Publisher) *EnrollmentService {
	return &EnrollmentService{DB: db, Producer: producer}
}

// Enroll admits the caller into an event. All gates (existence, capacity,
// duplicate, schedule conflict) run atomically in the store so concurrent
// requests cannot overfill an event.
func (s *EnrollmentService) Enroll(ctx context.Context, caller *models.Identity, eventID string) (*models.Enrollment, error) {
	if !caller.Role.May(models.ActionEnrollSelf) {
		return nil, models.ErrForbidden
	}

	enrollment := &models.Enrollment{
		ID:        uuid.New().String(),
		UserID:    caller.UserID,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.DB.Enroll(ctx, enrollment); err != nil {
		return nil, err
	}

	if s.Producer != nil {
		if err := s.Producer.PublishEnrollmentCreated(*enrollment); err != nil {
			fmt.Printf("failed to publish enrollment created: %v\n", err)
		}
	}
	return enrollment, nil
}

// Unenroll removes the caller's enrollment in an event and returns the
// removed record.
func (s *EnrollmentService) Unenroll(ctx context.Context, caller *models.Identity, eventID string) (*models.Enrollment, error) {
	enrollment, err := s.DB.Unenroll(ctx, caller.UserID, eventID)
	if err != nil {
		return nil, err
	}

	if s.Producer != nil {
		if err := s.Producer.PublishEnrollmentCancelled(*enrollment); err != nil {
			fmt.Printf("failed to publish enrollment cancelled: %v\n", err)
		}
	}
	return enrollment, nil
}

// ListOwn returns the caller's enrollments with event details.
func (s *EnrollmentService) ListOwn(ctx context.Context, caller *models.Identity) ([]models.Enrollment, error) {
	return s.DB.ListByUser(ctx, caller.UserID)
}

// GetOwn resolves an enrollment by id and verifies the caller holds it.
func (s *EnrollmentService) GetOwn(ctx context.Context, caller *models.Identity, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.DB.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != caller.UserID && caller.Role != models.RoleAdmin {
		return nil, models.ErrForbidden
	}
	return enrollment, nil
}
