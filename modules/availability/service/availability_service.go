package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/cache"
	"schedulr-api/core/constants"
	"schedulr-api/core/errors"
	"schedulr-api/core/logger"
	"schedulr-api/modules/availability/dto"
	"schedulr-api/modules/availability/entity"
	"schedulr-api/modules/availability/repository"
	etEntity "schedulr-api/modules/eventtype/entity"
	etRepository "schedulr-api/modules/eventtype/repository"
)

// MaxQueryRangeDays caps a single availability lookup.
const MaxQueryRangeDays = 90

type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, q *dto.SlotQuery) (*dto.AvailabilityResponse, *errors.AppError)

	// ComputeSlotsForDay recomputes one day's slots from a fresh snapshot,
	// bypassing the cache. Booking validation depends on this.
	ComputeSlotsForDay(ctx context.Context, et *etEntity.EventType, day LocalDate) ([]entity.TimeSlot, *errors.AppError)

	ListRules(ctx context.Context, organizerID uuid.UUID) ([]dto.RuleResponse, *errors.AppError)
	CreateRule(ctx context.Context, organizerID uuid.UUID, req *dto.RuleRequest) (*dto.RuleResponse, *errors.AppError)
	UpdateRule(ctx context.Context, organizerID, ruleID uuid.UUID, req *dto.RuleRequest) (*dto.RuleResponse, *errors.AppError)
	DeleteRule(ctx context.Context, organizerID, ruleID uuid.UUID) *errors.AppError

	ListOverrides(ctx context.Context, organizerID uuid.UUID) ([]dto.OverrideResponse, *errors.AppError)
	CreateOverride(ctx context.Context, organizerID uuid.UUID, req *dto.OverrideRequest) (*dto.OverrideResponse, *errors.AppError)
	UpdateOverride(ctx context.Context, organizerID, overrideID uuid.UUID, req *dto.OverrideRequest) (*dto.OverrideResponse, *errors.AppError)
	DeleteOverride(ctx context.Context, organizerID, overrideID uuid.UUID) *errors.AppError

	GetBufferConfig(ctx context.Context, organizerID uuid.UUID) (*dto.BufferConfigResponse, *errors.AppError)
	UpdateBufferConfig(ctx context.Context, organizerID uuid.UUID, req *dto.BufferConfigRequest) (*dto.BufferConfigResponse, *errors.AppError)

	ListBlockedTimes(ctx context.Context, organizerID uuid.UUID) ([]dto.BlockedTimeResponse, *errors.AppError)
	CreateBlockedTime(ctx context.Context, organizerID uuid.UUID, req *dto.BlockedTimeRequest) (*dto.BlockedTimeResponse, *errors.AppError)
	DeleteBlockedTime(ctx context.Context, organizerID, blockedID uuid.UUID) *errors.AppError

	InvalidateSlotCache(ctx context.Context, organizerID uuid.UUID)
}

type availabilityService struct {
	repo   repository.AvailabilityRepository
	etRepo etRepository.EventTypeRepository
	cache  cache.Cache
	now    func() time.Time
}

func NewAvailabilityService(repo repository.AvailabilityRepository, etRepo etRepository.EventTypeRepository, c cache.Cache) AvailabilityService {
	return &availabilityService{
		repo:   repo,
		etRepo: etRepo,
		cache:  c,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// cachedAvailability is the slot cache payload.
type cachedAvailability struct {
	Days           []dto.DayAvailability `json:"days"`
	SlotsGenerated int                   `json:"slots_generated"`
}

func (s *availabilityService) GetAvailableSlots(ctx context.Context, q *dto.SlotQuery) (*dto.AvailabilityResponse, *errors.AppError) {
	started := time.Now()

	organizer, err := s.repo.GetOrganizerBySlug(ctx, q.OrganizerSlug)
	if err != nil {
		logger.Error("AvailabilityService:GetAvailableSlots:OrganizerLookupError", "slug", q.OrganizerSlug, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load organizer", err)
	}
	if organizer == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Organizer not found", nil)
	}

	et, err := s.etRepo.GetBySlug(ctx, organizer.OrganizerID, q.EventTypeSlug)
	if err != nil {
		logger.Error("AvailabilityService:GetAvailableSlots:EventTypeLookupError", "slug", q.EventTypeSlug, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event type", err)
	}
	if et == nil || !et.IsActive {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}

	loc, lerr := time.LoadLocation(organizer.Timezone)
	if lerr != nil {
		logger.Error("AvailabilityService:GetAvailableSlots:BadOrganizerTimezone",
			"organizer_id", organizer.OrganizerID, "timezone", organizer.Timezone, "error", lerr)
		return nil, errors.NewAppError(errors.ErrConfiguration, "Organizer timezone is not a valid IANA zone", lerr)
	}

	displayTZ := q.Timezone
	if displayTZ == "" {
		displayTZ = organizer.Timezone
	}
	displayLoc, lerr := time.LoadLocation(displayTZ)
	if lerr != nil {
		return nil, errors.NewAppError(errors.ErrValidation, fmt.Sprintf("Unknown timezone %q", q.Timezone), lerr)
	}

	now := s.now()
	from, to, appErr := s.resolveRange(q.StartDate, q.EndDate, now, loc)
	if appErr != nil {
		return nil, appErr
	}

	resp := &dto.AvailabilityResponse{
		OrganizerSlug: organizer.Slug,
		EventTypeSlug: et.Slug,
		Timezone:      displayTZ,
	}

	cacheKey := fmt.Sprintf("%s:%s:%s:%s", et.ID, from, to, displayTZ)
	if s.cache != nil {
		if raw, found, cerr := s.cache.GetSlots(ctx, organizer.OrganizerID.String(), cacheKey); cerr != nil {
			logger.Warn("AvailabilityService:GetAvailableSlots:CacheReadError", "error", cerr)
		} else if found {
			var cached cachedAvailability
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				resp.Days = cached.Days
				resp.Metrics = dto.PerformanceMetrics{
					ComputationTimeMs: time.Since(started).Milliseconds(),
					CacheHit:          true,
					SlotsGenerated:    cached.SlotsGenerated,
				}
				return resp, nil
			}
		}
	}

	snap, appErr := s.buildSnapshot(ctx, organizer, from, to, loc, now)
	if appErr != nil {
		return nil, appErr
	}

	free := FreeIntervals(snap, et, from, to, loc)
	slots := GenerateSlots(snap, et, free, loc)

	days := groupSlotsByDay(slots, from, to, loc, displayLoc)
	resp.Days = days
	resp.Metrics = dto.PerformanceMetrics{
		ComputationTimeMs: time.Since(started).Milliseconds(),
		CacheHit:          false,
		SlotsGenerated:    len(slots),
	}

	if s.cache != nil {
		payload, jerr := json.Marshal(cachedAvailability{Days: days, SlotsGenerated: len(slots)})
		if jerr == nil {
			if cerr := s.cache.SetSlots(ctx, organizer.OrganizerID.String(), cacheKey, string(payload)); cerr != nil {
				logger.Warn("AvailabilityService:GetAvailableSlots:CacheWriteError", "error", cerr)
			}
		}
	}

	logger.Info("AvailabilityService:GetAvailableSlots:Computed",
		"organizer_id", organizer.OrganizerID,
		"event_type_id", et.ID,
		"from", from.String(),
		"to", to.String(),
		"slots", len(slots),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return resp, nil
}

func (s *availabilityService) ComputeSlotsForDay(ctx context.Context, et *etEntity.EventType, day LocalDate) ([]entity.TimeSlot, *errors.AppError) {
	organizer, err := s.repo.GetOrganizerByID(ctx, et.OrganizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load organizer", err)
	}
	if organizer == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Organizer not found", nil)
	}
	loc, lerr := time.LoadLocation(organizer.Timezone)
	if lerr != nil {
		return nil, errors.NewAppError(errors.ErrConfiguration, "Organizer timezone is not a valid IANA zone", lerr)
	}

	snap, appErr := s.buildSnapshot(ctx, organizer, day, day, loc, s.now())
	if appErr != nil {
		return nil, appErr
	}
	free := FreeIntervals(snap, et, day, day, loc)
	return GenerateSlots(snap, et, free, loc), nil
}

// buildSnapshot loads everything one computation needs. The UTC fetch
// window carries a one day margin on both sides so carried-in midnight
// tails and buffer-expanded bookings near the edges are not missed.
func (s *availabilityService) buildSnapshot(ctx context.Context, organizer *entity.OrganizerSettings, from, to LocalDate, loc *time.Location, now time.Time) (*entity.AvailabilitySnapshot, *errors.AppError) {
	windowStart := MidnightOf(from.Prev(), loc)
	windowEnd := MidnightOf(to.Next().Next(), loc)

	rules, err := s.repo.GetRules(ctx, organizer.OrganizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load availability rules", err)
	}
	overrides, err := s.repo.GetOverrides(ctx, organizer.OrganizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load date overrides", err)
	}
	buffer, err := s.repo.GetBufferConfig(ctx, organizer.OrganizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load buffer configuration", err)
	}
	blocked, err := s.repo.GetBlockedTimes(ctx, organizer.OrganizerID, windowStart, windowEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load blocked times", err)
	}
	holds, err := s.repo.GetBookingHolds(ctx, organizer.OrganizerID, windowStart, windowEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load bookings", err)
	}

	return &entity.AvailabilitySnapshot{
		Organizer: *organizer,
		Rules:     rules,
		Overrides: overrides,
		Buffer:    buffer,
		Blocked:   blocked,
		Bookings:  holds,
		Now:       now,
	}, nil
}

func (s *availabilityService) resolveRange(startDate, endDate string, now time.Time, loc *time.Location) (LocalDate, LocalDate, *errors.AppError) {
	var from, to LocalDate
	var err error

	if startDate == "" {
		from = LocalDateOf(now, loc)
	} else if from, err = ParseLocalDate(startDate); err != nil {
		return from, to, errors.NewAppError(errors.ErrValidation, "Invalid start_date", err)
	}

	if endDate == "" {
		to = from
		for i := 0; i < 6; i++ {
			to = to.Next()
		}
	} else if to, err = ParseLocalDate(endDate); err != nil {
		return from, to, errors.NewAppError(errors.ErrValidation, "Invalid end_date", err)
	}

	if from.After(to) {
		return from, to, errors.NewAppError(errors.ErrValidation, "start_date must not be after end_date", nil)
	}
	days := 1
	for d := from; d != to; d = d.Next() {
		days++
		if days > MaxQueryRangeDays {
			return from, to, errors.NewAppError(errors.ErrValidation,
				fmt.Sprintf("Date range exceeds %d days", MaxQueryRangeDays), nil)
		}
	}
	return from, to, nil
}

// groupSlotsByDay buckets slots by organizer-local start date and formats
// instants in the invitee's display zone. Days without slots are kept so
// clients can render a full calendar grid.
func groupSlotsByDay(slots []entity.TimeSlot, from, to LocalDate, loc, displayLoc *time.Location) []dto.DayAvailability {
	byDay := make(map[LocalDate][]dto.TimeSlotResponse)
	for _, slot := range slots {
		d := LocalDateOf(slot.StartTime, loc)
		byDay[d] = append(byDay[d], dto.TimeSlotResponse{
			StartTime:      slot.StartTime.In(displayLoc).Format(time.RFC3339),
			EndTime:        slot.EndTime.In(displayLoc).Format(time.RFC3339),
			AvailableSpots: slot.AvailableSpots,
			TotalSpots:     slot.TotalSpots,
		})
	}

	var days []dto.DayAvailability
	for d := from; !d.After(to); d = d.Next() {
		daySlots := byDay[d]
		if daySlots == nil {
			daySlots = []dto.TimeSlotResponse{}
		}
		days = append(days, dto.DayAvailability{Date: d.String(), Slots: daySlots})
	}
	return days
}

func (s *availabilityService) ListRules(ctx context.Context, organizerID uuid.UUID) ([]dto.RuleResponse, *errors.AppError) {
	rules, err := s.repo.GetRules(ctx, organizerID)
	if err != nil {
		logger.Error("AvailabilityService:ListRules:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list availability rules", err)
	}
	out := make([]dto.RuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *dto.NewRuleResponse(&rules[i]))
	}
	return out, nil
}

func (s *availabilityService) validateRule(ctx context.Context, organizerID uuid.UUID, req *dto.RuleRequest) *errors.AppError {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return errors.NewAppError(errors.ErrValidation, "day_of_week must be 0 (Sunday) through 6 (Saturday)", nil)
	}
	start, err := ParseClock(req.StartTime)
	if err != nil {
		return errors.NewAppError(errors.ErrValidation, "Invalid start_time", err)
	}
	end, err := ParseClock(req.EndTime)
	if err != nil {
		return errors.NewAppError(errors.ErrValidation, "Invalid end_time", err)
	}
	if start == end {
		return errors.NewAppError(errors.ErrValidation, "start_time and end_time must differ", nil)
	}
	for _, id := range req.EventTypeIDs {
		et, err := s.etRepo.GetByID(ctx, id)
		if err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "Failed to verify event type", err)
		}
		if et == nil || et.OrganizerID != organizerID {
			return errors.NewAppError(errors.ErrValidation, fmt.Sprintf("Unknown event type %s", id), nil)
		}
	}
	return nil
}

func (s *availabilityService) CreateRule(ctx context.Context, organizerID uuid.UUID, req *dto.RuleRequest) (*dto.RuleResponse, *errors.AppError) {
	if appErr := s.validateRule(ctx, organizerID, req); appErr != nil {
		return nil, appErr
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	rule := &entity.AvailabilityRule{
		OrganizerID:  organizerID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		EventTypeIDs: req.EventTypeIDs,
		IsActive:     active,
	}
	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		logger.Error("AvailabilityService:CreateRule:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create availability rule", err)
	}

	s.InvalidateSlotCache(ctx, organizerID)
	logger.Info("AvailabilityService:CreateRule:Success",
		"organizer_id", organizerID, "rule_id", created.ID, "day_of_week", created.DayOfWeek)
	return dto.NewRuleResponse(created), nil
}

func (s *availabilityService) UpdateRule(ctx context.Context, organizerID, ruleID uuid.UUID, req *dto.RuleRequest) (*dto.RuleResponse, *errors.AppError) {
	if appErr := s.validateRule(ctx, organizerID, req); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetRuleByID(ctx, ruleID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load availability rule", err)
	}
	if existing == nil || existing.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Availability rule not found", nil)
	}

	existing.DayOfWeek = req.DayOfWeek
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.EventTypeIDs = req.EventTypeIDs
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateRule(ctx, existing)
	if err != nil {
		logger.Error("AvailabilityService:UpdateRule:Error", "rule_id", ruleID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update availability rule", err)
	}
	if updated == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Availability rule not found", nil)
	}

	s.InvalidateSlotCache(ctx, organizerID)
	return dto.NewRuleResponse(updated), nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, organizerID, ruleID uuid.UUID) *errors.AppError {
	if err := s.repo.DeleteRule(ctx, organizerID, ruleID); err != nil {
		logger.Error("AvailabilityService:DeleteRule:Error", "rule_id", ruleID, "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete availability rule", err)
	}
	s.InvalidateSlotCache(ctx, organizerID)
	return nil
}

func (s *availabilityService) ListOverrides(ctx context.Context, organizerID uuid.UUID) ([]dto.OverrideResponse, *errors.AppError) {
	overrides, err := s.repo.GetOverrides(ctx, organizerID)
	if err != nil {
		logger.Error("AvailabilityService:ListOverrides:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list date overrides", err)
	}
	out := make([]dto.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		out = append(out, *dto.NewOverrideResponse(&overrides[i]))
	}
	return out, nil
}

func (s *availabilityService) validateOverride(ctx context.Context, organizerID uuid.UUID, req *dto.OverrideRequest) (LocalDate, *errors.AppError) {
	date, err := ParseLocalDate(req.Date)
	if err != nil {
		return date, errors.NewAppError(errors.ErrValidation, "Invalid date", err)
	}
	if req.IsAvailable {
		if req.StartTime == nil || req.EndTime == nil {
			return date, errors.NewAppError(errors.ErrValidation, "start_time and end_time are required for an open override", nil)
		}
		start, err := ParseClock(*req.StartTime)
		if err != nil {
			return date, errors.NewAppError(errors.ErrValidation, "Invalid start_time", err)
		}
		end, err := ParseClock(*req.EndTime)
		if err != nil {
			return date, errors.NewAppError(errors.ErrValidation, "Invalid end_time", err)
		}
		// Overrides define a single calendar day and cannot span midnight.
		if start.Minutes() >= end.Minutes() {
			return date, errors.NewAppError(errors.ErrValidation, "start_time must be before end_time", nil)
		}
	}
	for _, id := range req.EventTypeIDs {
		et, err := s.etRepo.GetByID(ctx, id)
		if err != nil {
			return date, errors.NewAppError(errors.ErrInternalServer, "Failed to verify event type", err)
		}
		if et == nil || et.OrganizerID != organizerID {
			return date, errors.NewAppError(errors.ErrValidation, fmt.Sprintf("Unknown event type %s", id), nil)
		}
	}
	return date, nil
}

func (s *availabilityService) CreateOverride(ctx context.Context, organizerID uuid.UUID, req *dto.OverrideRequest) (*dto.OverrideResponse, *errors.AppError) {
	date, appErr := s.validateOverride(ctx, organizerID, req)
	if appErr != nil {
		return nil, appErr
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	o := &entity.DateOverrideRule{
		OrganizerID:  organizerID,
		Date:         time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC),
		IsAvailable:  req.IsAvailable,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		EventTypeIDs: req.EventTypeIDs,
		Reason:       req.Reason,
		IsActive:     active,
	}
	created, err := s.repo.CreateOverride(ctx, o)
	if err != nil {
		logger.Error("AvailabilityService:CreateOverride:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create date override", err)
	}

	s.InvalidateSlotCache(ctx, organizerID)
	logger.Info("AvailabilityService:CreateOverride:Success",
		"organizer_id", organizerID, "override_id", created.ID, "date", req.Date, "is_available", req.IsAvailable)
	return dto.NewOverrideResponse(created), nil
}

func (s *availabilityService) UpdateOverride(ctx context.Context, organizerID, overrideID uuid.UUID, req *dto.OverrideRequest) (*dto.OverrideResponse, *errors.AppError) {
	date, appErr := s.validateOverride(ctx, organizerID, req)
	if appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetOverrideByID(ctx, overrideID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load date override", err)
	}
	if existing == nil || existing.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Date override not found", nil)
	}

	existing.Date = time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)
	existing.IsAvailable = req.IsAvailable
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.EventTypeIDs = req.EventTypeIDs
	existing.Reason = req.Reason
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateOverride(ctx, existing)
	if err != nil {
		logger.Error("AvailabilityService:UpdateOverride:Error", "override_id", overrideID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update date override", err)
	}
	if updated == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Date override not found", nil)
	}

	s.InvalidateSlotCache(ctx, organizerID)
	return dto.NewOverrideResponse(updated), nil
}

func (s *availabilityService) DeleteOverride(ctx context.Context, organizerID, overrideID uuid.UUID) *errors.AppError {
	if err := s.repo.DeleteOverride(ctx, organizerID, overrideID); err != nil {
		logger.Error("AvailabilityService:DeleteOverride:Error", "override_id", overrideID, "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete date override", err)
	}
	s.InvalidateSlotCache(ctx, organizerID)
	return nil
}

func (s *availabilityService) GetBufferConfig(ctx context.Context, organizerID uuid.UUID) (*dto.BufferConfigResponse, *errors.AppError) {
	b, err := s.repo.GetBufferConfig(ctx, organizerID)
	if err != nil {
		logger.Error("AvailabilityService:GetBufferConfig:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load buffer configuration", err)
	}
	if b == nil {
		// Defaults for organizers that never saved a configuration.
		return &dto.BufferConfigResponse{
			SlotIntervalMinutes: constants.DefaultSlotIntervalMinutes,
		}, nil
	}
	return dto.NewBufferConfigResponse(b), nil
}

func (s *availabilityService) UpdateBufferConfig(ctx context.Context, organizerID uuid.UUID, req *dto.BufferConfigRequest) (*dto.BufferConfigResponse, *errors.AppError) {
	if req.DefaultBufferBefore < 0 || req.DefaultBufferAfter < 0 || req.MinimumGap < 0 {
		return nil, errors.NewAppError(errors.ErrValidation, "Buffer values must not be negative", nil)
	}
	if req.SlotIntervalMinutes <= 0 || req.SlotIntervalMinutes > constants.MinutesPerDay {
		return nil, errors.NewAppError(errors.ErrValidation, "slot_interval_minutes must be between 1 and 1440", nil)
	}

	saved, err := s.repo.UpsertBufferConfig(ctx, &entity.BufferTime{
		OrganizerID:         organizerID,
		DefaultBufferBefore: req.DefaultBufferBefore,
		DefaultBufferAfter:  req.DefaultBufferAfter,
		MinimumGap:          req.MinimumGap,
		SlotIntervalMinutes: req.SlotIntervalMinutes,
	})
	if err != nil {
		logger.Error("AvailabilityService:UpdateBufferConfig:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to save buffer configuration", err)
	}

	s.InvalidateSlotCache(ctx, organizerID)
	return dto.NewBufferConfigResponse(saved), nil
}

func (s *availabilityService) ListBlockedTimes(ctx context.Context, organizerID uuid.UUID) ([]dto.BlockedTimeResponse, *errors.AppError) {
	blocked, err := s.repo.ListBlockedTimes(ctx, organizerID)
	if err != nil {
		logger.Error("AvailabilityService:ListBlockedTimes:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list blocked times", err)
	}
	out := make([]dto.BlockedTimeResponse, 0, len(blocked))
	for i := range blocked {
		out = append(out, *dto.NewBlockedTimeResponse(&blocked[i]))
	}
	return out, nil
}

func (s *availabilityService) CreateBlockedTime(ctx context.Context, organizerID uuid.UUID, req *dto.BlockedTimeRequest) (*dto.BlockedTimeResponse, *errors.AppError) {
	if req.StartDatetime.IsZero() || req.EndDatetime.IsZero() {
		return nil, errors.NewAppError(errors.ErrValidation, "start_datetime and end_datetime are required", nil)
	}
	if !req.StartDatetime.Before(req.EndDatetime) {
		return nil, errors.NewAppError(errors.ErrValidation, "start_datetime must be before end_datetime", nil)
	}

	created, err := s.repo.CreateBlockedTime(ctx, &entity.BlockedTime{
		OrganizerID:   organizerID,
		StartDatetime: req.StartDatetime.UTC(),
		EndDatetime:   req.EndDatetime.UTC(),
		Reason:        req.Reason,
		Source:        entity.SourceManual,
		IsActive:      true,
	})
	if err != nil {
		logger.Error("AvailabilityService:CreateBlockedTime:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create blocked time", err)
	}

	s.InvalidateSlotCache(ctx, organizerID)
	return dto.NewBlockedTimeResponse(created), nil
}

func (s *availabilityService) DeleteBlockedTime(ctx context.Context, organizerID, blockedID uuid.UUID) *errors.AppError {
	if err := s.repo.DeleteBlockedTime(ctx, organizerID, blockedID); err != nil {
		logger.Error("AvailabilityService:DeleteBlockedTime:Error", "blocked_id", blockedID, "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete blocked time", err)
	}
	s.InvalidateSlotCache(ctx, organizerID)
	return nil
}

func (s *availabilityService) InvalidateSlotCache(ctx context.Context, organizerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSlots(ctx, organizerID.String()); err != nil {
		logger.Warn("AvailabilityService:InvalidateSlotCache:Error", "organizer_id", organizerID, "error", err)
	}
}
