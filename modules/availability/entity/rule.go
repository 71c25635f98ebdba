package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
)

// UUIDList is a JSONB-backed list of event type IDs. An empty list means the
// record applies to every event type of the organizer.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	return json.Marshal(l)
}

func (l *UUIDList) Scan(value any) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, l)
}

// Matches reports whether the list covers the given event type.
func (l UUIDList) Matches(eventTypeID uuid.UUID) bool {
	if len(l) == 0 {
		return true
	}
	for _, id := range l {
		if id == eventTypeID {
			return true
		}
	}
	return false
}

// AvailabilityRule is a recurring weekly open window in the organizer's
// local wall clock. StartTime/EndTime are "HH:MM"; StartTime > EndTime means
// the window spans midnight into the following calendar day.
type AvailabilityRule struct {
	OrganizerID  uuid.UUID `db:"organizer_id" json:"organizer_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"` // 0=Sunday ... 6=Saturday
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	EventTypeIDs UUIDList  `db:"event_type_ids" json:"event_type_ids"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	coreEntity.BaseEntity
}

// SpansMidnight reports whether the window wraps past 24:00.
func (r *AvailabilityRule) SpansMidnight() bool {
	return r.StartTime > r.EndTime
}

// DateOverrideRule replaces the weekly rules for one organizer-local
// calendar day. When IsAvailable is false the whole day is closed and
// StartTime/EndTime are ignored.
type DateOverrideRule struct {
	OrganizerID  uuid.UUID `db:"organizer_id" json:"organizer_id"`
	Date         time.Time `db:"date" json:"date"` // DATE column; only Y/M/D are meaningful
	IsAvailable  bool      `db:"is_available" json:"is_available"`
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string   `db:"end_time" json:"end_time,omitempty"`
	EventTypeIDs UUIDList  `db:"event_type_ids" json:"event_type_ids"`
	Reason       string    `db:"reason" json:"reason"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	coreEntity.BaseEntity
}

// BufferTime holds the organizer-wide defaults; per-event-type buffer fields
// override these when set.
type BufferTime struct {
	OrganizerID         uuid.UUID `db:"organizer_id" json:"organizer_id"`
	DefaultBufferBefore int       `db:"default_buffer_before" json:"default_buffer_before"`
	DefaultBufferAfter  int       `db:"default_buffer_after" json:"default_buffer_after"`
	MinimumGap          int       `db:"minimum_gap" json:"minimum_gap"`
	SlotIntervalMinutes int       `db:"slot_interval_minutes" json:"slot_interval_minutes"`
	coreEntity.BaseEntity
}

// BlockedTime is a busy interval in UTC, either entered manually or synced
// from an external calendar.
type BlockedTime struct {
	OrganizerID       uuid.UUID  `db:"organizer_id" json:"organizer_id"`
	StartDatetime     time.Time  `db:"start_datetime" json:"start_datetime"`
	EndDatetime       time.Time  `db:"end_datetime" json:"end_datetime"`
	Reason            string     `db:"reason" json:"reason"`
	Source            string     `db:"source" json:"source"`
	ExternalID        string     `db:"external_id" json:"external_id"`
	ExternalUpdatedAt *time.Time `db:"external_updated_at" json:"external_updated_at,omitempty"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	coreEntity.BaseEntity
}

// BlockedTime sources
const (
	SourceManual         = "manual"
	SourceGoogleCalendar = "google_calendar"
)

// OrganizerSettings is the slice of the organizer profile the engine needs:
// the IANA timezone the rules are expressed in, plus the public slug.
type OrganizerSettings struct {
	OrganizerID uuid.UUID `db:"organizer_id" json:"organizer_id"`
	Slug        string    `db:"slug" json:"slug"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Timezone    string    `db:"timezone" json:"timezone"`
	coreEntity.BaseEntity
}
