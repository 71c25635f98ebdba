package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/database"
	"schedulr-api/modules/calendar/entity"
)

const connectionColumns = `
	id, organizer_id, provider, calendar_id, account_email, access_token,
	refresh_token, token_expiry, last_synced_at, sync_enabled, created_at, updated_at`

type CalendarRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CalendarConnection, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]entity.CalendarConnection, error)
	ListSyncEnabled(ctx context.Context) ([]entity.CalendarConnection, error)
	Create(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiry time.Time) error
	UpdateLastSynced(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, organizerID, id uuid.UUID) error
}

type calendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CalendarConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM calendar_connections WHERE id = $1`

	var conn entity.CalendarConnection
	if err := r.db.GetContext(ctx, &conn, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *calendarRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]entity.CalendarConnection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM calendar_connections
		WHERE organizer_id = $1
		ORDER BY created_at`

	var conns []entity.CalendarConnection
	if err := r.db.SelectContext(ctx, &conns, query, organizerID); err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *calendarRepository) ListSyncEnabled(ctx context.Context) ([]entity.CalendarConnection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM calendar_connections
		WHERE sync_enabled = true
		ORDER BY created_at`

	var conns []entity.CalendarConnection
	if err := r.db.SelectContext(ctx, &conns, query); err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *calendarRepository) Create(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	query := `
		INSERT INTO calendar_connections (organizer_id, provider, calendar_id, account_email, access_token, refresh_token, token_expiry, sync_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + connectionColumns

	var created entity.CalendarConnection
	err := r.db.GetContext(ctx, &created, query,
		conn.OrganizerID, conn.Provider, conn.CalendarID, conn.AccountEmail,
		conn.AccessToken, conn.RefreshToken, conn.TokenExpiry, conn.SyncEnabled)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *calendarRepository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiry time.Time) error {
	query := `
		UPDATE calendar_connections
		SET access_token = $1, refresh_token = $2, token_expiry = $3, updated_at = NOW()
		WHERE id = $4`
	return r.db.ExecContext(ctx, query, accessToken, refreshToken, expiry, id)
}

func (r *calendarRepository) UpdateLastSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE calendar_connections SET last_synced_at = $1, updated_at = NOW() WHERE id = $2`
	return r.db.ExecContext(ctx, query, at, id)
}

func (r *calendarRepository) Delete(ctx context.Context, organizerID, id uuid.UUID) error {
	query := `DELETE FROM calendar_connections WHERE id = $1 AND organizer_id = $2`
	return r.db.ExecContext(ctx, query, id, organizerID)
}
