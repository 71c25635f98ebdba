package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/database"
	"schedulr-api/modules/eventtype/entity"
)

const eventTypeColumns = `
	id, organizer_id, name, slug, description, duration_minutes, max_attendees,
	enable_waitlist, min_scheduling_notice, max_scheduling_horizon,
	buffer_before, buffer_after, max_bookings_per_day, slot_interval_minutes,
	location_type, location_details, is_active, is_private, created_at, updated_at`

type EventTypeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EventType, error)
	GetBySlug(ctx context.Context, organizerID uuid.UUID, slug string) (*entity.EventType, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, activeOnly bool) ([]entity.EventType, error)
	Create(ctx context.Context, et *entity.EventType) (*entity.EventType, error)
	Update(ctx context.Context, et *entity.EventType) (*entity.EventType, error)
	Deactivate(ctx context.Context, organizerID, id uuid.UUID) error
	SlugExists(ctx context.Context, organizerID uuid.UUID, slug string) (bool, error)
	CountConfirmedBookingsOnDay(ctx context.Context, eventTypeID uuid.UUID, dayStart, dayEnd time.Time) (int, error)
}

type eventTypeRepository struct {
	db database.IDatabase
}

func NewEventTypeRepository(db database.IDatabase) EventTypeRepository {
	return &eventTypeRepository{db: db}
}

func (r *eventTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EventType, error) {
	query := `SELECT ` + eventTypeColumns + ` FROM event_types WHERE id = $1`

	var et entity.EventType
	if err := r.db.GetContext(ctx, &et, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &et, nil
}

func (r *eventTypeRepository) GetBySlug(ctx context.Context, organizerID uuid.UUID, slug string) (*entity.EventType, error) {
	query := `SELECT ` + eventTypeColumns + ` FROM event_types WHERE organizer_id = $1 AND slug = $2`

	var et entity.EventType
	if err := r.db.GetContext(ctx, &et, query, organizerID, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &et, nil
}

func (r *eventTypeRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, activeOnly bool) ([]entity.EventType, error) {
	query := `SELECT ` + eventTypeColumns + ` FROM event_types WHERE organizer_id = $1`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at`

	var list []entity.EventType
	if err := r.db.SelectContext(ctx, &list, query, organizerID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *eventTypeRepository) Create(ctx context.Context, et *entity.EventType) (*entity.EventType, error) {
	query := `
		INSERT INTO event_types (
			organizer_id, name, slug, description, duration_minutes, max_attendees,
			enable_waitlist, min_scheduling_notice, max_scheduling_horizon,
			buffer_before, buffer_after, max_bookings_per_day, slot_interval_minutes,
			location_type, location_details, is_active, is_private
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + eventTypeColumns

	var created entity.EventType
	err := r.db.GetContext(ctx, &created, query,
		et.OrganizerID, et.Name, et.Slug, et.Description, et.DurationMinutes, et.MaxAttendees,
		et.EnableWaitlist, et.MinSchedulingNotice, et.MaxSchedulingHorizon,
		et.BufferBefore, et.BufferAfter, et.MaxBookingsPerDay, et.SlotIntervalMinutes,
		et.LocationType, et.LocationDetails, et.IsActive, et.IsPrivate)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *eventTypeRepository) Update(ctx context.Context, et *entity.EventType) (*entity.EventType, error) {
	query := `
		UPDATE event_types
		SET name = $1, slug = $2, description = $3, duration_minutes = $4, max_attendees = $5,
		    enable_waitlist = $6, min_scheduling_notice = $7, max_scheduling_horizon = $8,
		    buffer_before = $9, buffer_after = $10, max_bookings_per_day = $11,
		    slot_interval_minutes = $12, location_type = $13, location_details = $14,
		    is_active = $15, is_private = $16, updated_at = NOW()
		WHERE id = $17 AND organizer_id = $18
		RETURNING ` + eventTypeColumns

	var updated entity.EventType
	err := r.db.GetContext(ctx, &updated, query,
		et.Name, et.Slug, et.Description, et.DurationMinutes, et.MaxAttendees,
		et.EnableWaitlist, et.MinSchedulingNotice, et.MaxSchedulingHorizon,
		et.BufferBefore, et.BufferAfter, et.MaxBookingsPerDay,
		et.SlotIntervalMinutes, et.LocationType, et.LocationDetails,
		et.IsActive, et.IsPrivate, et.ID, et.OrganizerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

// Deactivate soft-deletes so historical bookings keep their event type row.
func (r *eventTypeRepository) Deactivate(ctx context.Context, organizerID, id uuid.UUID) error {
	query := `UPDATE event_types SET is_active = false, updated_at = NOW() WHERE id = $1 AND organizer_id = $2`
	return r.db.ExecContext(ctx, query, id, organizerID)
}

func (r *eventTypeRepository) SlugExists(ctx context.Context, organizerID uuid.UUID, slug string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_types WHERE organizer_id = $1 AND slug = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, organizerID, slug); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventTypeRepository) CountConfirmedBookingsOnDay(ctx context.Context, eventTypeID uuid.UUID, dayStart, dayEnd time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE event_type_id = $1 AND status = 'confirmed' AND start_time >= $2 AND start_time < $3`

	var count int
	if err := r.db.GetContext(ctx, &count, query, eventTypeID, dayStart, dayEnd); err != nil {
		return 0, err
	}
	return count, nil
}
