package dto

import (
	"time"

	"github.com/google/uuid"

	"schedulr-api/modules/eventtype/entity"
)

type CreateEventTypeRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	DurationMinutes      int    `json:"duration_minutes"`
	MaxAttendees         int    `json:"max_attendees"`
	EnableWaitlist       bool   `json:"enable_waitlist"`
	MinSchedulingNotice  int    `json:"min_scheduling_notice"`
	MaxSchedulingHorizon int    `json:"max_scheduling_horizon"`
	BufferBefore         *int   `json:"buffer_before,omitempty"`
	BufferAfter          *int   `json:"buffer_after,omitempty"`
	MaxBookingsPerDay    *int   `json:"max_bookings_per_day,omitempty"`
	SlotIntervalMinutes  *int   `json:"slot_interval_minutes,omitempty"`
	LocationType         string `json:"location_type"`
	LocationDetails      string `json:"location_details"`
	IsPrivate            bool   `json:"is_private"`
}

type UpdateEventTypeRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	DurationMinutes      int    `json:"duration_minutes"`
	MaxAttendees         int    `json:"max_attendees"`
	EnableWaitlist       bool   `json:"enable_waitlist"`
	MinSchedulingNotice  int    `json:"min_scheduling_notice"`
	MaxSchedulingHorizon int    `json:"max_scheduling_horizon"`
	BufferBefore         *int   `json:"buffer_before,omitempty"`
	BufferAfter          *int   `json:"buffer_after,omitempty"`
	MaxBookingsPerDay    *int   `json:"max_bookings_per_day,omitempty"`
	SlotIntervalMinutes  *int   `json:"slot_interval_minutes,omitempty"`
	LocationType         string `json:"location_type"`
	LocationDetails      string `json:"location_details"`
	IsActive             *bool  `json:"is_active,omitempty"`
	IsPrivate            *bool  `json:"is_private,omitempty"`
}

type EventTypeResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	Description          string    `json:"description"`
	DurationMinutes      int       `json:"duration_minutes"`
	MaxAttendees         int       `json:"max_attendees"`
	EnableWaitlist       bool      `json:"enable_waitlist"`
	MinSchedulingNotice  int       `json:"min_scheduling_notice"`
	MaxSchedulingHorizon int       `json:"max_scheduling_horizon"`
	BufferBefore         *int      `json:"buffer_before,omitempty"`
	BufferAfter          *int      `json:"buffer_after,omitempty"`
	MaxBookingsPerDay    *int      `json:"max_bookings_per_day,omitempty"`
	SlotIntervalMinutes  *int      `json:"slot_interval_minutes,omitempty"`
	LocationType         string    `json:"location_type"`
	LocationDetails      string    `json:"location_details"`
	IsActive             bool      `json:"is_active"`
	IsPrivate            bool      `json:"is_private"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func NewEventTypeResponse(et *entity.EventType) *EventTypeResponse {
	return &EventTypeResponse{
		ID:                   et.ID,
		Name:                 et.Name,
		Slug:                 et.Slug,
		Description:          et.Description,
		DurationMinutes:      et.DurationMinutes,
		MaxAttendees:         et.MaxAttendees,
		EnableWaitlist:       et.EnableWaitlist,
		MinSchedulingNotice:  et.MinSchedulingNotice,
		MaxSchedulingHorizon: et.MaxSchedulingHorizon,
		BufferBefore:         et.BufferBefore,
		BufferAfter:          et.BufferAfter,
		MaxBookingsPerDay:    et.MaxBookingsPerDay,
		SlotIntervalMinutes:  et.SlotIntervalMinutes,
		LocationType:         et.LocationType,
		LocationDetails:      et.LocationDetails,
		IsActive:             et.IsActive,
		IsPrivate:            et.IsPrivate,
		CreatedAt:            et.CreatedAt,
		UpdatedAt:            et.UpdatedAt,
	}
}

// PublicEventTypeResponse is the invitee-facing shape; location details are
// withheld until a booking is confirmed.
type PublicEventTypeResponse struct {
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	MaxAttendees    int    `json:"max_attendees"`
	EnableWaitlist  bool   `json:"enable_waitlist"`
	LocationType    string `json:"location_type"`
	OrganizerName   string `json:"organizer_name"`
	OrganizerSlug   string `json:"organizer_slug"`
}
