package dto

import (
	"time"

	"github.com/google/uuid"

	"schedulr-api/modules/booking/entity"
)

// CreateBookingRequest is the public booking submission. StartTime is
// RFC 3339; the end is derived from the event type duration.
type CreateBookingRequest struct {
	StartTime       time.Time `json:"start_time"`
	InviteeName     string    `json:"invitee_name"`
	InviteeEmail    string    `json:"invitee_email"`
	InviteePhone    string    `json:"invitee_phone"`
	InviteeTimezone string    `json:"invitee_timezone"`
	AttendeeCount   int       `json:"attendee_count"`
	Notes           string    `json:"notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type RescheduleBookingRequest struct {
	StartTime time.Time `json:"start_time"`
}

// BookingOutcomeRequest records what happened to a past booking,
// either "completed" or "no_show".
type BookingOutcomeRequest struct {
	Status string `json:"status"`
}

type BookingResponse struct {
	ID                uuid.UUID  `json:"id"`
	EventTypeID       uuid.UUID  `json:"event_type_id"`
	InviteeName       string     `json:"invitee_name"`
	InviteeEmail      string     `json:"invitee_email"`
	InviteeTimezone   string     `json:"invitee_timezone"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	AttendeeCount     int        `json:"attendee_count"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	RescheduledFromID *uuid.UUID `json:"rescheduled_from_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	// AccessToken is only populated on creation and reschedule responses;
	// it is the invitee's manage link credential.
	AccessToken string `json:"access_token,omitempty"`
}

func NewBookingResponse(b *entity.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                b.ID,
		EventTypeID:       b.EventTypeID,
		InviteeName:       b.InviteeName,
		InviteeEmail:      b.InviteeEmail,
		InviteeTimezone:   b.InviteeTimezone,
		StartTime:         b.StartTime.UTC(),
		EndTime:           b.EndTime.UTC(),
		AttendeeCount:     b.AttendeeCount,
		Status:            b.Status,
		Notes:             b.Notes,
		CancelledAt:       b.CancelledAt,
		RescheduledFromID: b.RescheduledFromID,
		CreatedAt:         b.CreatedAt,
	}
}
