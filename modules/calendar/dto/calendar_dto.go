package dto

import (
	"time"

	"github.com/google/uuid"

	"schedulr-api/modules/calendar/entity"
)

// ConnectRequest registers tokens obtained from an externally completed
// OAuth consent flow.
type ConnectRequest struct {
	Provider     string    `json:"provider"`
	CalendarID   string    `json:"calendar_id"`
	AccountEmail string    `json:"account_email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenExpiry  time.Time `json:"token_expiry"`
}

type ConnectionResponse struct {
	ID           uuid.UUID  `json:"id"`
	Provider     string     `json:"provider"`
	CalendarID   string     `json:"calendar_id"`
	AccountEmail string     `json:"account_email"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	SyncEnabled  bool       `json:"sync_enabled"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewConnectionResponse(conn *entity.CalendarConnection) *ConnectionResponse {
	return &ConnectionResponse{
		ID:           conn.ID,
		Provider:     conn.Provider,
		CalendarID:   conn.CalendarID,
		AccountEmail: conn.AccountEmail,
		LastSyncedAt: conn.LastSyncedAt,
		SyncEnabled:  conn.SyncEnabled,
		CreatedAt:    conn.CreatedAt,
	}
}

type SyncResultResponse struct {
	ConnectionID  uuid.UUID `json:"connection_id"`
	BusyIntervals int       `json:"busy_intervals"`
	SyncedAt      time.Time `json:"synced_at"`
}
