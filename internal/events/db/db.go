package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("ev.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// CreateEvent inserts the event unless another event already occupies the
// same venue, room and date. Check and insert share one transaction; the
// unique index on (venue, room, date) is the backstop under concurrency.
func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*models.Event)(nil)).
			Where("venue = ?", event.Venue).
			Where("room = ?", event.Room).
			Where("date = ?", event.Date).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check venue conflict: %w", err)
		}
		if taken {
			return models.ErrEventConflict
		}

		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	})
}

// UpdateEvent overwrites all mutable fields. Authorization happens in the
// service layer before this is called. Moving the event onto a slot held by
// another event is rejected the same way CreateEvent rejects it.
func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*models.Event)(nil)).
			Where("venue = ?", event.Venue).
			Where("room = ?", event.Room).
			Where("date = ?", event.Date).
			Where("id != ?", event.ID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check venue conflict: %w", err)
		}
		if taken {
			return models.ErrEventConflict
		}

		res, err := tx.NewUpdate().
			Model(&event).
			Column("name", "date", "venue", "room", "speaker", "description", "max_pax").
			Where("id = ?", event.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return models.ErrEventNotFound
		}
		return nil
	})
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListParticipants returns the users enrolled in an event.
func (d *DB) ListParticipants(ctx context.Context, eventID string) ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Join("JOIN enrollments AS en ON en.user_id = u.id").
		Where("en.event_id = ?", eventID).
		Order("en.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (d *DB) CountEnrollments(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Enrollment)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}
