package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingHold is the engine's read-only view of a confirmed booking: the
// occupied interval plus the buffers its own event type imposes around it.
// Buffers are resolved at load time so the engine never touches the store.
type BookingHold struct {
	BookingID     uuid.UUID `db:"booking_id" json:"booking_id"`
	EventTypeID   uuid.UUID `db:"event_type_id" json:"event_type_id"`
	StartTime     time.Time `db:"start_time" json:"start_time"`
	EndTime       time.Time `db:"end_time" json:"end_time"`
	AttendeeCount int       `db:"attendee_count" json:"attendee_count"`
	BufferBefore  int       `db:"buffer_before" json:"buffer_before"` // minutes
	BufferAfter   int       `db:"buffer_after" json:"buffer_after"`   // minutes
}

// AvailabilitySnapshot is the full data set one slot computation works on.
// It is loaded once per request and passed by value through the pure engine
// so concurrent computations never share mutable state.
type AvailabilitySnapshot struct {
	Organizer OrganizerSettings
	Rules     []AvailabilityRule
	Overrides []DateOverrideRule
	Buffer    *BufferTime
	Blocked   []BlockedTime
	Bookings  []BookingHold
	Now       time.Time
}

// MinimumGap returns the organizer's minimum gap in minutes between
// bookings, zero when no buffer configuration exists.
func (s *AvailabilitySnapshot) MinimumGap() int {
	if s.Buffer == nil {
		return 0
	}
	return s.Buffer.MinimumGap
}

// TimeSlot is the computed, ephemeral output of slot generation. Instants
// are UTC; AvailableSpots/TotalSpots are populated for group event types.
type TimeSlot struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	AvailableSpots *int      `json:"available_spots,omitempty"`
	TotalSpots     *int      `json:"total_spots,omitempty"`
}
