package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"schedulr-api/core/database"
	"schedulr-api/modules/availability/entity"
)

// AvailabilityRepository is the rule store: weekly rules, date overrides,
// buffer configuration, blocked time and a read-only view of confirmed
// bookings. Missing single rows come back as (nil, nil).
type AvailabilityRepository interface {
	GetOrganizerByID(ctx context.Context, organizerID uuid.UUID) (*entity.OrganizerSettings, error)
	GetOrganizerBySlug(ctx context.Context, slug string) (*entity.OrganizerSettings, error)

	GetRules(ctx context.Context, organizerID uuid.UUID) ([]entity.AvailabilityRule, error)
	GetRuleByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilityRule, error)
	CreateRule(ctx context.Context, rule *entity.AvailabilityRule) (*entity.AvailabilityRule, error)
	UpdateRule(ctx context.Context, rule *entity.AvailabilityRule) (*entity.AvailabilityRule, error)
	DeleteRule(ctx context.Context, organizerID, id uuid.UUID) error

	GetOverrides(ctx context.Context, organizerID uuid.UUID) ([]entity.DateOverrideRule, error)
	GetOverrideByID(ctx context.Context, id uuid.UUID) (*entity.DateOverrideRule, error)
	CreateOverride(ctx context.Context, o *entity.DateOverrideRule) (*entity.DateOverrideRule, error)
	UpdateOverride(ctx context.Context, o *entity.DateOverrideRule) (*entity.DateOverrideRule, error)
	DeleteOverride(ctx context.Context, organizerID, id uuid.UUID) error

	GetBufferConfig(ctx context.Context, organizerID uuid.UUID) (*entity.BufferTime, error)
	UpsertBufferConfig(ctx context.Context, b *entity.BufferTime) (*entity.BufferTime, error)

	GetBlockedTimes(ctx context.Context, organizerID uuid.UUID, from, to time.Time) ([]entity.BlockedTime, error)
	ListBlockedTimes(ctx context.Context, organizerID uuid.UUID) ([]entity.BlockedTime, error)
	CreateBlockedTime(ctx context.Context, b *entity.BlockedTime) (*entity.BlockedTime, error)
	DeleteBlockedTime(ctx context.Context, organizerID, id uuid.UUID) error
	UpsertExternalBlockedTime(ctx context.Context, b *entity.BlockedTime) error
	DeactivateMissingExternal(ctx context.Context, organizerID uuid.UUID, source string, seen []string) error

	GetBookingHolds(ctx context.Context, organizerID uuid.UUID, from, to time.Time) ([]entity.BookingHold, error)
}

type availabilityRepository struct {
	db database.IDatabase
}

func NewAvailabilityRepository(db database.IDatabase) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) GetOrganizerByID(ctx context.Context, organizerID uuid.UUID) (*entity.OrganizerSettings, error) {
	query := `
		SELECT id, organizer_id, slug, display_name, timezone, created_at, updated_at
		FROM organizer_profiles
		WHERE organizer_id = $1`

	var o entity.OrganizerSettings
	if err := r.db.GetContext(ctx, &o, query, organizerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *availabilityRepository) GetOrganizerBySlug(ctx context.Context, slug string) (*entity.OrganizerSettings, error) {
	query := `
		SELECT id, organizer_id, slug, display_name, timezone, created_at, updated_at
		FROM organizer_profiles
		WHERE slug = $1`

	var o entity.OrganizerSettings
	if err := r.db.GetContext(ctx, &o, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *availabilityRepository) GetRules(ctx context.Context, organizerID uuid.UUID) ([]entity.AvailabilityRule, error) {
	query := `
		SELECT id, organizer_id, day_of_week, start_time, end_time, event_type_ids, is_active, created_at, updated_at
		FROM availability_rules
		WHERE organizer_id = $1
		ORDER BY day_of_week, start_time`

	var rules []entity.AvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, organizerID); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *availabilityRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilityRule, error) {
	query := `
		SELECT id, organizer_id, day_of_week, start_time, end_time, event_type_ids, is_active, created_at, updated_at
		FROM availability_rules
		WHERE id = $1`

	var rule entity.AvailabilityRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *availabilityRepository) CreateRule(ctx context.Context, rule *entity.AvailabilityRule) (*entity.AvailabilityRule, error) {
	query := `
		INSERT INTO availability_rules (organizer_id, day_of_week, start_time, end_time, event_type_ids, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, organizer_id, day_of_week, start_time, end_time, event_type_ids, is_active, created_at, updated_at`

	var created entity.AvailabilityRule
	err := r.db.GetContext(ctx, &created, query,
		rule.OrganizerID, rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.EventTypeIDs, rule.IsActive)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *availabilityRepository) UpdateRule(ctx context.Context, rule *entity.AvailabilityRule) (*entity.AvailabilityRule, error) {
	query := `
		UPDATE availability_rules
		SET day_of_week = $1, start_time = $2, end_time = $3, event_type_ids = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6 AND organizer_id = $7
		RETURNING id, organizer_id, day_of_week, start_time, end_time, event_type_ids, is_active, created_at, updated_at`

	var updated entity.AvailabilityRule
	err := r.db.GetContext(ctx, &updated, query,
		rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.EventTypeIDs, rule.IsActive, rule.ID, rule.OrganizerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *availabilityRepository) DeleteRule(ctx context.Context, organizerID, id uuid.UUID) error {
	query := `DELETE FROM availability_rules WHERE id = $1 AND organizer_id = $2`
	return r.db.ExecContext(ctx, query, id, organizerID)
}

func (r *availabilityRepository) GetOverrides(ctx context.Context, organizerID uuid.UUID) ([]entity.DateOverrideRule, error) {
	query := `
		SELECT id, organizer_id, date, is_available, start_time, end_time, event_type_ids, reason, is_active, created_at, updated_at
		FROM date_override_rules
		WHERE organizer_id = $1
		ORDER BY date`

	var overrides []entity.DateOverrideRule
	if err := r.db.SelectContext(ctx, &overrides, query, organizerID); err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *availabilityRepository) GetOverrideByID(ctx context.Context, id uuid.UUID) (*entity.DateOverrideRule, error) {
	query := `
		SELECT id, organizer_id, date, is_available, start_time, end_time, event_type_ids, reason, is_active, created_at, updated_at
		FROM date_override_rules
		WHERE id = $1`

	var o entity.DateOverrideRule
	if err := r.db.GetContext(ctx, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *availabilityRepository) CreateOverride(ctx context.Context, o *entity.DateOverrideRule) (*entity.DateOverrideRule, error) {
	query := `
		INSERT INTO date_override_rules (organizer_id, date, is_available, start_time, end_time, event_type_ids, reason, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, organizer_id, date, is_available, start_time, end_time, event_type_ids, reason, is_active, created_at, updated_at`

	var created entity.DateOverrideRule
	err := r.db.GetContext(ctx, &created, query,
		o.OrganizerID, o.Date, o.IsAvailable, o.StartTime, o.EndTime, o.EventTypeIDs, o.Reason, o.IsActive)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *availabilityRepository) UpdateOverride(ctx context.Context, o *entity.DateOverrideRule) (*entity.DateOverrideRule, error) {
	query := `
		UPDATE date_override_rules
		SET date = $1, is_available = $2, start_time = $3, end_time = $4, event_type_ids = $5, reason = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8 AND organizer_id = $9
		RETURNING id, organizer_id, date, is_available, start_time, end_time, event_type_ids, reason, is_active, created_at, updated_at`

	var updated entity.DateOverrideRule
	err := r.db.GetContext(ctx, &updated, query,
		o.Date, o.IsAvailable, o.StartTime, o.EndTime, o.EventTypeIDs, o.Reason, o.IsActive, o.ID, o.OrganizerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *availabilityRepository) DeleteOverride(ctx context.Context, organizerID, id uuid.UUID) error {
	query := `DELETE FROM date_override_rules WHERE id = $1 AND organizer_id = $2`
	return r.db.ExecContext(ctx, query, id, organizerID)
}

func (r *availabilityRepository) GetBufferConfig(ctx context.Context, organizerID uuid.UUID) (*entity.BufferTime, error) {
	query := `
		SELECT id, organizer_id, default_buffer_before, default_buffer_after, minimum_gap, slot_interval_minutes, created_at, updated_at
		FROM buffer_times
		WHERE organizer_id = $1`

	var b entity.BufferTime
	if err := r.db.GetContext(ctx, &b, query, organizerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *availabilityRepository) UpsertBufferConfig(ctx context.Context, b *entity.BufferTime) (*entity.BufferTime, error) {
	query := `
		INSERT INTO buffer_times (organizer_id, default_buffer_before, default_buffer_after, minimum_gap, slot_interval_minutes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (organizer_id) DO UPDATE
		SET default_buffer_before = EXCLUDED.default_buffer_before,
		    default_buffer_after = EXCLUDED.default_buffer_after,
		    minimum_gap = EXCLUDED.minimum_gap,
		    slot_interval_minutes = EXCLUDED.slot_interval_minutes,
		    updated_at = NOW()
		RETURNING id, organizer_id, default_buffer_before, default_buffer_after, minimum_gap, slot_interval_minutes, created_at, updated_at`

	var saved entity.BufferTime
	err := r.db.GetContext(ctx, &saved, query,
		b.OrganizerID, b.DefaultBufferBefore, b.DefaultBufferAfter, b.MinimumGap, b.SlotIntervalMinutes)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *availabilityRepository) GetBlockedTimes(ctx context.Context, organizerID uuid.UUID, from, to time.Time) ([]entity.BlockedTime, error) {
	query := `
		SELECT id, organizer_id, start_datetime, end_datetime, reason, source, external_id, external_updated_at, is_active, created_at, updated_at
		FROM blocked_times
		WHERE organizer_id = $1 AND is_active = true AND start_datetime < $3 AND end_datetime > $2
		ORDER BY start_datetime`

	var blocked []entity.BlockedTime
	if err := r.db.SelectContext(ctx, &blocked, query, organizerID, from, to); err != nil {
		return nil, err
	}
	return blocked, nil
}

func (r *availabilityRepository) ListBlockedTimes(ctx context.Context, organizerID uuid.UUID) ([]entity.BlockedTime, error) {
	query := `
		SELECT id, organizer_id, start_datetime, end_datetime, reason, source, external_id, external_updated_at, is_active, created_at, updated_at
		FROM blocked_times
		WHERE organizer_id = $1 AND is_active = true
		ORDER BY start_datetime`

	var blocked []entity.BlockedTime
	if err := r.db.SelectContext(ctx, &blocked, query, organizerID); err != nil {
		return nil, err
	}
	return blocked, nil
}

func (r *availabilityRepository) CreateBlockedTime(ctx context.Context, b *entity.BlockedTime) (*entity.BlockedTime, error) {
	query := `
		INSERT INTO blocked_times (organizer_id, start_datetime, end_datetime, reason, source, external_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, organizer_id, start_datetime, end_datetime, reason, source, external_id, external_updated_at, is_active, created_at, updated_at`

	var created entity.BlockedTime
	err := r.db.GetContext(ctx, &created, query,
		b.OrganizerID, b.StartDatetime, b.EndDatetime, b.Reason, b.Source, b.ExternalID, b.IsActive)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *availabilityRepository) DeleteBlockedTime(ctx context.Context, organizerID, id uuid.UUID) error {
	query := `DELETE FROM blocked_times WHERE id = $1 AND organizer_id = $2 AND source = 'manual'`
	return r.db.ExecContext(ctx, query, id, organizerID)
}

// UpsertExternalBlockedTime inserts or refreshes one synced calendar event,
// keyed by (organizer_id, source, external_id).
func (r *availabilityRepository) UpsertExternalBlockedTime(ctx context.Context, b *entity.BlockedTime) error {
	query := `
		INSERT INTO blocked_times (organizer_id, start_datetime, end_datetime, reason, source, external_id, external_updated_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		ON CONFLICT (organizer_id, source, external_id) DO UPDATE
		SET start_datetime = EXCLUDED.start_datetime,
		    end_datetime = EXCLUDED.end_datetime,
		    reason = EXCLUDED.reason,
		    external_updated_at = EXCLUDED.external_updated_at,
		    is_active = true,
		    updated_at = NOW()`

	return r.db.ExecContext(ctx, query,
		b.OrganizerID, b.StartDatetime, b.EndDatetime, b.Reason, b.Source, b.ExternalID, b.ExternalUpdatedAt)
}

// DeactivateMissingExternal marks synced entries no longer present upstream
// as inactive instead of deleting them, preserving sync history.
func (r *availabilityRepository) DeactivateMissingExternal(ctx context.Context, organizerID uuid.UUID, source string, seen []string) error {
	if len(seen) == 0 {
		query := `UPDATE blocked_times SET is_active = false, updated_at = NOW() WHERE organizer_id = $1 AND source = $2`
		return r.db.ExecContext(ctx, query, organizerID, source)
	}

	query := `
		UPDATE blocked_times
		SET is_active = false, updated_at = NOW()
		WHERE organizer_id = ? AND source = ? AND external_id NOT IN (?)`

	query, args, err := sqlx.In(query, organizerID, source, seen)
	if err != nil {
		return err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	return r.db.ExecContext(ctx, query, args...)
}

// GetBookingHolds returns confirmed bookings overlapping the window, each
// carrying its event type's resolved buffer minutes.
func (r *availabilityRepository) GetBookingHolds(ctx context.Context, organizerID uuid.UUID, from, to time.Time) ([]entity.BookingHold, error) {
	query := `
		SELECT b.id AS booking_id,
		       b.event_type_id,
		       b.start_time,
		       b.end_time,
		       b.attendee_count,
		       COALESCE(et.buffer_before, bt.default_buffer_before, 0) AS buffer_before,
		       COALESCE(et.buffer_after, bt.default_buffer_after, 0) AS buffer_after
		FROM bookings b
		JOIN event_types et ON et.id = b.event_type_id
		LEFT JOIN buffer_times bt ON bt.organizer_id = b.organizer_id
		WHERE b.organizer_id = $1
		  AND b.status = 'confirmed'
		  AND b.start_time < $3
		  AND b.end_time > $2
		ORDER BY b.start_time`

	var holds []entity.BookingHold
	if err := r.db.SelectContext(ctx, &holds, query, organizerID, from, to); err != nil {
		return nil, err
	}
	return holds, nil
}
