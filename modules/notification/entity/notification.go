package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
)

// Notification types
const (
	TypeBookingCreated     = "booking_created"
	TypeBookingCancelled   = "booking_cancelled"
	TypeBookingRescheduled = "booking_rescheduled"
	TypeBookingReminder    = "booking_reminder"
)

// Notification statuses. Delivery is handled by an external sender; this
// service only records and schedules.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusDue       = "due"
)

type JSONB map[string]any

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		j = JSONB{}
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value any) error {
	if value == nil {
		*j = JSONB{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, j)
}

// Notification is one feed entry for the organizer dashboard, also used as
// the handoff record for the external delivery pipeline.
type Notification struct {
	OrganizerID  uuid.UUID  `db:"organizer_id" json:"organizer_id"`
	BookingID    *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	Type         string     `db:"type" json:"type"`
	Title        string     `db:"title" json:"title"`
	Payload      JSONB      `db:"payload" json:"payload"`
	Status       string     `db:"status" json:"status"`
	ScheduledFor *time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	IsRead       bool       `db:"is_read" json:"is_read"`
	coreEntity.BaseEntity
}

// PaginatedNotificationEntity pairs a notification page with its metadata.
type PaginatedNotificationEntity = coreEntity.Pagination[Notification]
