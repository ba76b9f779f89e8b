package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"ms-registration/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// Enroll runs the full admission sequence inside one transaction: resolve the
// event, count current enrollments against max_pax, reject duplicates, reject
// same-instant schedule clashes, then insert. On Postgres the event row is
// locked with FOR UPDATE so two near-capacity enrollments cannot both pass the
// count check; sqlite serializes writers on its own. The unique index on
// (user_id, event_id) backs the duplicate check at the schema level.
func (d *DB) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		q := tx.NewSelect().
			Model(&event).
			Where("ev.id = ?", enrollment.EventID)
		if d.Bun.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrEventNotFound
			}
			return fmt.Errorf("lock event row: %w", err)
		}

		count, err := tx.NewSelect().
			Model((*models.Enrollment)(nil)).
			Where("event_id = ?", enrollment.EventID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		if count >= event.MaxPax {
			return models.ErrEventFull
		}

		duplicate, err := tx.NewSelect().
			Model((*models.Enrollment)(nil)).
			Where("user_id = ?", enrollment.UserID).
			Where("event_id = ?", enrollment.EventID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check duplicate enrollment: %w", err)
		}
		if duplicate {
			return models.ErrAlreadyEnrolled
		}

		clash, err := tx.NewSelect().
			Model((*models.Enrollment)(nil)).
			Join("JOIN events AS ev ON ev.id = en.event_id").
			Where("en.user_id = ?", enrollment.UserID).
			Where("ev.date = ?", event.Date).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check schedule conflict: %w", err)
		}
		if clash {
			return models.ErrScheduleConflict
		}

		if _, err := tx.NewInsert().Model(enrollment).Exec(ctx); err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}
		return nil
	})
}

// Unenroll deletes the enrollment matching both ids and returns the removed
// record. Select and delete share one transaction, and the delete verifies it
// removed a row, so concurrent unenrolls of the same enrollment cannot both
// report success.
func (d *DB) Unenroll(ctx context.Context, userID, eventID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			Model(&enrollment).
			Where("user_id = ?", userID).
			Where("event_id = ?", eventID).
			Limit(1)
		if d.Bun.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrEnrollmentNotFound
			}
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Enrollment)(nil)).
			Where("id = ?", enrollment.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return models.ErrEnrollmentNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (d *DB) GetEnrollmentByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := d.Bun.NewSelect().
		Model(&enrollment).
		Relation("Event").
		Where("en.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// ListByUser returns the user's enrollments with their events loaded.
func (d *DB) ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := d.Bun.NewSelect().
		Model(&enrollments).
		Relation("Event").
		Where("en.user_id = ?", userID).
		Order("en.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
