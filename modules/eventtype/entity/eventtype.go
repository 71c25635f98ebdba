package entity

import (
	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
)

// Location types
const (
	LocationVideoCall = "video_call"
	LocationPhoneCall = "phone_call"
	LocationInPerson  = "in_person"
	LocationCustom    = "custom"
)

// EventType is a bookable meeting template. Durations, notice and buffers
// are minutes; the scheduling horizon is days. Nil pointer fields fall back
// to the organizer-wide buffer configuration.
type EventType struct {
	OrganizerID          uuid.UUID `db:"organizer_id" json:"organizer_id"`
	Name                 string    `db:"name" json:"name"`
	Slug                 string    `db:"slug" json:"slug"`
	Description          string    `db:"description" json:"description"`
	DurationMinutes      int       `db:"duration_minutes" json:"duration_minutes"`
	MaxAttendees         int       `db:"max_attendees" json:"max_attendees"`
	EnableWaitlist       bool      `db:"enable_waitlist" json:"enable_waitlist"`
	MinSchedulingNotice  int       `db:"min_scheduling_notice" json:"min_scheduling_notice"`
	MaxSchedulingHorizon int       `db:"max_scheduling_horizon" json:"max_scheduling_horizon"`
	BufferBefore         *int      `db:"buffer_before" json:"buffer_before,omitempty"`
	BufferAfter          *int      `db:"buffer_after" json:"buffer_after,omitempty"`
	MaxBookingsPerDay    *int      `db:"max_bookings_per_day" json:"max_bookings_per_day,omitempty"`
	SlotIntervalMinutes  *int      `db:"slot_interval_minutes" json:"slot_interval_minutes,omitempty"`
	LocationType         string    `db:"location_type" json:"location_type"`
	LocationDetails      string    `db:"location_details" json:"location_details"`
	IsActive             bool      `db:"is_active" json:"is_active"`

	// IsPrivate hides the event type from the organizer's public listing;
	// it stays bookable through its direct link.
	IsPrivate bool `db:"is_private" json:"is_private"`
	coreEntity.BaseEntity
}

// IsGroup reports whether the event type admits more than one attendee per
// slot.
func (e *EventType) IsGroup() bool {
	return e.MaxAttendees > 1
}
