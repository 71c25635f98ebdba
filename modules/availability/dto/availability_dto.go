package dto

import (
	"time"

	"github.com/google/uuid"

	"schedulr-api/modules/availability/entity"
)

// SlotQuery is the public availability lookup. Timezone is the invitee's
// IANA zone used for display; it defaults to the organizer's.
type SlotQuery struct {
	OrganizerSlug string `query:"-"`
	EventTypeSlug string `query:"-"`
	StartDate     string `query:"start_date"`
	EndDate       string `query:"end_date"`
	Timezone      string `query:"timezone"`
}

type TimeSlotResponse struct {
	StartTime      string `json:"start_time"` // RFC 3339, invitee timezone
	EndTime        string `json:"end_time"`
	AvailableSpots *int   `json:"available_spots,omitempty"`
	TotalSpots     *int   `json:"total_spots,omitempty"`
}

type DayAvailability struct {
	Date  string             `json:"date"` // organizer-local YYYY-MM-DD
	Slots []TimeSlotResponse `json:"slots"`
}

type PerformanceMetrics struct {
	ComputationTimeMs int64 `json:"computation_time_ms"`
	CacheHit          bool  `json:"cache_hit"`
	SlotsGenerated    int   `json:"slots_generated"`
}

type AvailabilityResponse struct {
	OrganizerSlug string             `json:"organizer_slug"`
	EventTypeSlug string             `json:"event_type_slug"`
	Timezone      string             `json:"timezone"`
	Days          []DayAvailability  `json:"days"`
	Metrics       PerformanceMetrics `json:"performance_metrics"`
}

type RuleRequest struct {
	DayOfWeek    int         `json:"day_of_week"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	EventTypeIDs []uuid.UUID `json:"event_type_ids"`
	IsActive     *bool       `json:"is_active"`
}

type RuleResponse struct {
	ID           uuid.UUID   `json:"id"`
	DayOfWeek    int         `json:"day_of_week"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	EventTypeIDs []uuid.UUID `json:"event_type_ids"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func NewRuleResponse(r *entity.AvailabilityRule) *RuleResponse {
	return &RuleResponse{
		ID:           r.ID,
		DayOfWeek:    r.DayOfWeek,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		EventTypeIDs: r.EventTypeIDs,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type OverrideRequest struct {
	Date         string      `json:"date"` // YYYY-MM-DD, organizer-local
	IsAvailable  bool        `json:"is_available"`
	StartTime    *string     `json:"start_time,omitempty"`
	EndTime      *string     `json:"end_time,omitempty"`
	EventTypeIDs []uuid.UUID `json:"event_type_ids"`
	Reason       string      `json:"reason"`
	IsActive     *bool       `json:"is_active"`
}

type OverrideResponse struct {
	ID           uuid.UUID   `json:"id"`
	Date         string      `json:"date"`
	IsAvailable  bool        `json:"is_available"`
	StartTime    *string     `json:"start_time,omitempty"`
	EndTime      *string     `json:"end_time,omitempty"`
	EventTypeIDs []uuid.UUID `json:"event_type_ids"`
	Reason       string      `json:"reason"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func NewOverrideResponse(o *entity.DateOverrideRule) *OverrideResponse {
	return &OverrideResponse{
		ID:           o.ID,
		Date:         o.Date.Format("2006-01-02"),
		IsAvailable:  o.IsAvailable,
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		EventTypeIDs: o.EventTypeIDs,
		Reason:       o.Reason,
		IsActive:     o.IsActive,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

type BufferConfigRequest struct {
	DefaultBufferBefore int `json:"default_buffer_before"`
	DefaultBufferAfter  int `json:"default_buffer_after"`
	MinimumGap          int `json:"minimum_gap"`
	SlotIntervalMinutes int `json:"slot_interval_minutes"`
}

type BufferConfigResponse struct {
	DefaultBufferBefore int       `json:"default_buffer_before"`
	DefaultBufferAfter  int       `json:"default_buffer_after"`
	MinimumGap          int       `json:"minimum_gap"`
	SlotIntervalMinutes int       `json:"slot_interval_minutes"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewBufferConfigResponse(b *entity.BufferTime) *BufferConfigResponse {
	return &BufferConfigResponse{
		DefaultBufferBefore: b.DefaultBufferBefore,
		DefaultBufferAfter:  b.DefaultBufferAfter,
		MinimumGap:          b.MinimumGap,
		SlotIntervalMinutes: b.SlotIntervalMinutes,
		UpdatedAt:           b.UpdatedAt,
	}
}

type BlockedTimeRequest struct {
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Reason        string    `json:"reason"`
}

type BlockedTimeResponse struct {
	ID            uuid.UUID `json:"id"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Reason        string    `json:"reason"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewBlockedTimeResponse(b *entity.BlockedTime) *BlockedTimeResponse {
	return &BlockedTimeResponse{
		ID:            b.ID,
		StartDatetime: b.StartDatetime.UTC(),
		EndDatetime:   b.EndDatetime.UTC(),
		Reason:        b.Reason,
		Source:        b.Source,
		CreatedAt:     b.CreatedAt,
	}
}
