package entity

import (
	"time"

	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
)

// Booking statuses
const (
	StatusConfirmed   = "confirmed"
	StatusWaitlisted  = "waitlisted"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
	StatusCompleted   = "completed"
	StatusNoShow      = "no_show"
)

// Who cancelled a booking
const (
	CancelledByInvitee   = "invitee"
	CancelledByOrganizer = "organizer"
)

// Booking occupies [StartTime, EndTime) in UTC. The invitee manages it
// through the unguessable AccessToken instead of an account.
type Booking struct {
	OrganizerID        uuid.UUID  `db:"organizer_id" json:"organizer_id"`
	EventTypeID        uuid.UUID  `db:"event_type_id" json:"event_type_id"`
	InviteeName        string     `db:"invitee_name" json:"invitee_name"`
	InviteeEmail       string     `db:"invitee_email" json:"invitee_email"`
	InviteePhone       string     `db:"invitee_phone" json:"invitee_phone"`
	InviteeTimezone    string     `db:"invitee_timezone" json:"invitee_timezone"`
	StartTime          time.Time  `db:"start_time" json:"start_time"`
	EndTime            time.Time  `db:"end_time" json:"end_time"`
	AttendeeCount      int        `db:"attendee_count" json:"attendee_count"`
	Status             string     `db:"status" json:"status"`
	AccessToken        string     `db:"access_token" json:"-"`
	Notes              string     `db:"notes" json:"notes"`
	CancellationReason string     `db:"cancellation_reason" json:"cancellation_reason"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelledBy        string     `db:"cancelled_by" json:"cancelled_by"`
	RescheduledFromID  *uuid.UUID `db:"rescheduled_from_id" json:"rescheduled_from_id,omitempty"`
	coreEntity.BaseEntity
}

// IsActive reports whether the booking still occupies its slot.
func (b *Booking) IsActive() bool {
	return b.Status == StatusConfirmed || b.Status == StatusWaitlisted
}
