package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	coreParams "schedulr-api/core/params"
	"schedulr-api/modules/booking/entity"
)

// ErrSlotTaken and ErrCapacityFull are returned by the serialized insert
// when the transactional re-check finds the slot gone. The service maps
// them onto the API error taxonomy.
var (
	ErrSlotTaken    = errors.New("slot already taken")
	ErrCapacityFull = errors.New("slot capacity exhausted")
)

const bookingColumns = `
	id, organizer_id, event_type_id, invitee_name, invitee_email, invitee_phone,
	invitee_timezone, start_time, end_time, attendee_count, status, access_token,
	notes, cancellation_reason, cancelled_at, cancelled_by, rescheduled_from_id,
	created_at, updated_at`

type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetByAccessToken(ctx context.Context, token string) (*entity.Booking, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) ([]entity.Booking, int, error)
	CreateSerialized(ctx context.Context, b *entity.Booking, maxAttendees int) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, reason, by string) (*entity.Booking, error)
	RescheduleSerialized(ctx context.Context, old *entity.Booking, replacement *entity.Booking, maxAttendees int) (*entity.Booking, error)
}

type bookingRepository struct {
	db database.IDatabase
}

func NewBookingRepository(db database.IDatabase) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b entity.Booking
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) GetByAccessToken(ctx context.Context, token string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE access_token = $1`

	var b entity.Booking
	if err := r.db.GetContext(ctx, &b, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) ([]entity.Booking, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM bookings WHERE organizer_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, organizerID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE organizer_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3`

	offset := (params.PageNumber - 1) * params.PageSize
	var bookings []entity.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, organizerID, params.PageSize, offset); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CreateSerialized inserts a booking after re-checking the slot inside a
// transaction. An advisory lock on the organizer serializes competing
// submissions, so two invitees racing for the last slot cannot both commit.
func (r *bookingRepository) CreateSerialized(ctx context.Context, b *entity.Booking, maxAttendees int) (*entity.Booking, error) {
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("BookingRepository:CreateSerialized:RollbackError", "error", err)
		}
	}()

	if err := lockOrganizer(ctx, tx, b.OrganizerID); err != nil {
		return nil, err
	}
	if err := recheckSlot(ctx, tx, b, maxAttendees); err != nil {
		return nil, err
	}

	created, err := insertBooking(ctx, tx, b)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// RescheduleSerialized retires the old booking and inserts its replacement
// in one transaction so no moment exists where both or neither hold the
// calendar.
func (r *bookingRepository) RescheduleSerialized(ctx context.Context, old *entity.Booking, replacement *entity.Booking, maxAttendees int) (*entity.Booking, error) {
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("BookingRepository:RescheduleSerialized:RollbackError", "error", err)
		}
	}()

	if err := lockOrganizer(ctx, tx, old.OrganizerID); err != nil {
		return nil, err
	}

	// Retire the old booking first so its slot does not count against the
	// overlap re-check when rescheduling within the same window.
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status IN ($3, $4)`,
		entity.StatusRescheduled, old.ID, entity.StatusConfirmed, entity.StatusWaitlisted)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrSlotTaken
	}

	if err := recheckSlot(ctx, tx, replacement, maxAttendees); err != nil {
		return nil, err
	}
	created, err := insertBooking(ctx, tx, replacement)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

type txExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func lockOrganizer(ctx context.Context, tx txExecer, organizerID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, organizerID)
	return err
}

// recheckSlot re-validates inside the transaction: for one-on-one event
// types any overlapping active booking is a conflict; for group types the
// exact slot's attendee sum must leave room and bookings elsewhere must not
// overlap.
func recheckSlot(ctx context.Context, tx txExecer, b *entity.Booking, maxAttendees int) error {
	if maxAttendees <= 1 {
		var conflicts int
		err := tx.GetContext(ctx, &conflicts, `
			SELECT COUNT(*)
			FROM bookings
			WHERE organizer_id = $1
			  AND status IN ($2, $3)
			  AND start_time < $5
			  AND end_time > $4`,
			b.OrganizerID, entity.StatusConfirmed, entity.StatusWaitlisted, b.StartTime, b.EndTime)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrSlotTaken
		}
		return nil
	}

	var misaligned int
	err := tx.GetContext(ctx, &misaligned, `
		SELECT COUNT(*)
		FROM bookings
		WHERE organizer_id = $1
		  AND status IN ($2, $3)
		  AND start_time < $5
		  AND end_time > $4
		  AND NOT (event_type_id = $6 AND start_time = $4 AND end_time = $5)`,
		b.OrganizerID, entity.StatusConfirmed, entity.StatusWaitlisted,
		b.StartTime, b.EndTime, b.EventTypeID)
	if err != nil {
		return err
	}
	if misaligned > 0 {
		return ErrSlotTaken
	}

	if b.Status == entity.StatusConfirmed {
		var taken int
		err = tx.GetContext(ctx, &taken, `
			SELECT COALESCE(SUM(attendee_count), 0)
			FROM bookings
			WHERE event_type_id = $1
			  AND status = $2
			  AND start_time = $3
			  AND end_time = $4`,
			b.EventTypeID, entity.StatusConfirmed, b.StartTime, b.EndTime)
		if err != nil {
			return err
		}
		if taken+b.AttendeeCount > maxAttendees {
			return ErrCapacityFull
		}
	}
	return nil
}

func insertBooking(ctx context.Context, tx txExecer, b *entity.Booking) (*entity.Booking, error) {
	query := `
		INSERT INTO bookings (
			organizer_id, event_type_id, invitee_name, invitee_email, invitee_phone,
			invitee_timezone, start_time, end_time, attendee_count, status,
			access_token, notes, rescheduled_from_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + bookingColumns

	var created entity.Booking
	err := tx.GetContext(ctx, &created, query,
		b.OrganizerID, b.EventTypeID, b.InviteeName, b.InviteeEmail, b.InviteePhone,
		b.InviteeTimezone, b.StartTime, b.EndTime, b.AttendeeCount, b.Status,
		b.AccessToken, b.Notes, b.RescheduledFromID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, reason, by string) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, cancellation_reason = $2, cancelled_by = $3, cancelled_at = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + bookingColumns

	var cancelledAt *time.Time
	if status == entity.StatusCancelled {
		now := time.Now().UTC()
		cancelledAt = &now
	}

	var updated entity.Booking
	err := r.db.GetContext(ctx, &updated, query, status, reason, by, cancelledAt, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}
