package entity

import (
	"time"

	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
)

// Calendar providers
const (
	ProviderGoogle = "google"
)

// CalendarConnection holds the credentials for one external calendar. The
// OAuth consent flow happens outside this service; it stores the resulting
// tokens and keeps the access token fresh during sync.
type CalendarConnection struct {
	OrganizerID  uuid.UUID  `db:"organizer_id" json:"organizer_id"`
	Provider     string     `db:"provider" json:"provider"`
	CalendarID   string     `db:"calendar_id" json:"calendar_id"`
	AccountEmail string     `db:"account_email" json:"account_email"`
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken string     `db:"refresh_token" json:"-"`
	TokenExpiry  time.Time  `db:"token_expiry" json:"-"`
	LastSyncedAt *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
	SyncEnabled  bool       `db:"sync_enabled" json:"sync_enabled"`
	coreEntity.BaseEntity
}

// BusyInterval is one busy window reported by the provider, UTC.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}
