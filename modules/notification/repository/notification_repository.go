package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"schedulr-api/core/database"
	coreParams "schedulr-api/core/params"
	"schedulr-api/modules/notification/entity"
)

const notificationColumns = `
	id, organizer_id, booking_id, type, title, payload, status, scheduled_for,
	is_read, created_at, updated_at`

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) (*entity.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) ([]entity.Notification, int, error)
	MarkRead(ctx context.Context, organizerID, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountUnread(ctx context.Context, organizerID uuid.UUID) (int, error)
}

type notificationRepository struct {
	db database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	query := `
		INSERT INTO notifications (organizer_id, booking_id, type, title, payload, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + notificationColumns

	var created entity.Notification
	err := r.db.GetContext(ctx, &created, query,
		n.OrganizerID, n.BookingID, n.Type, n.Title, n.Payload, n.Status, n.ScheduledFor)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n entity.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) ([]entity.Notification, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM notifications WHERE organizer_id = $1`, organizerID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE organizer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	offset := (params.PageNumber - 1) * params.PageSize
	var notifications []entity.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, organizerID, params.PageSize, offset); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, organizerID, id uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, updated_at = NOW() WHERE id = $1 AND organizer_id = $2`
	return r.db.ExecContext(ctx, query, id, organizerID)
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE notifications SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.db.ExecContext(ctx, query, status, id)
}

func (r *notificationRepository) CountUnread(ctx context.Context, organizerID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE organizer_id = $1 AND is_read = false`, organizerID)
	return count, err
}
