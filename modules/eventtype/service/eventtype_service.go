package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"schedulr-api/core/cache"
	"schedulr-api/core/constants"
	"schedulr-api/core/errors"
	"schedulr-api/core/logger"
	availRepository "schedulr-api/modules/availability/repository"
	"schedulr-api/modules/eventtype/dto"
	"schedulr-api/modules/eventtype/entity"
	"schedulr-api/modules/eventtype/repository"
)

type EventTypeService interface {
	List(ctx context.Context, organizerID uuid.UUID) ([]dto.EventTypeResponse, *errors.AppError)
	Get(ctx context.Context, organizerID, id uuid.UUID) (*dto.EventTypeResponse, *errors.AppError)
	GetPublic(ctx context.Context, organizerSlug, eventTypeSlug string) (*dto.PublicEventTypeResponse, *errors.AppError)
	ListPublic(ctx context.Context, organizerSlug string) ([]dto.PublicEventTypeResponse, *errors.AppError)
	Create(ctx context.Context, organizerID uuid.UUID, req *dto.CreateEventTypeRequest) (*dto.EventTypeResponse, *errors.AppError)
	Update(ctx context.Context, organizerID, id uuid.UUID, req *dto.UpdateEventTypeRequest) (*dto.EventTypeResponse, *errors.AppError)
	Delete(ctx context.Context, organizerID, id uuid.UUID) *errors.AppError
}

type eventTypeService struct {
	repo      repository.EventTypeRepository
	availRepo availRepository.AvailabilityRepository
	cache     cache.Cache
}

func NewEventTypeService(repo repository.EventTypeRepository, availRepo availRepository.AvailabilityRepository, c cache.Cache) EventTypeService {
	return &eventTypeService{repo: repo, availRepo: availRepo, cache: c}
}

func (s *eventTypeService) List(ctx context.Context, organizerID uuid.UUID) ([]dto.EventTypeResponse, *errors.AppError) {
	types, err := s.repo.ListByOrganizer(ctx, organizerID, false)
	if err != nil {
		logger.Error("EventTypeService:List:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list event types", err)
	}
	out := make([]dto.EventTypeResponse, 0, len(types))
	for i := range types {
		out = append(out, *dto.NewEventTypeResponse(&types[i]))
	}
	return out, nil
}

func (s *eventTypeService) Get(ctx context.Context, organizerID, id uuid.UUID) (*dto.EventTypeResponse, *errors.AppError) {
	et, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event type", err)
	}
	if et == nil || et.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}
	return dto.NewEventTypeResponse(et), nil
}

func (s *eventTypeService) GetPublic(ctx context.Context, organizerSlug, eventTypeSlug string) (*dto.PublicEventTypeResponse, *errors.AppError) {
	organizer, err := s.availRepo.GetOrganizerBySlug(ctx, organizerSlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load organizer", err)
	}
	if organizer == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Organizer not found", nil)
	}

	et, err := s.repo.GetBySlug(ctx, organizer.OrganizerID, eventTypeSlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event type", err)
	}
	if et == nil || !et.IsActive {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}

	return &dto.PublicEventTypeResponse{
		Name:            et.Name,
		Slug:            et.Slug,
		Description:     et.Description,
		DurationMinutes: et.DurationMinutes,
		MaxAttendees:    et.MaxAttendees,
		EnableWaitlist:  et.EnableWaitlist,
		LocationType:    et.LocationType,
		OrganizerName:   organizer.DisplayName,
		OrganizerSlug:   organizer.Slug,
	}, nil
}

// ListPublic is the organizer's public booking page: active event types,
// private ones omitted (they stay reachable through their direct link).
func (s *eventTypeService) ListPublic(ctx context.Context, organizerSlug string) ([]dto.PublicEventTypeResponse, *errors.AppError) {
	organizer, err := s.availRepo.GetOrganizerBySlug(ctx, organizerSlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load organizer", err)
	}
	if organizer == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Organizer not found", nil)
	}

	types, err := s.repo.ListByOrganizer(ctx, organizer.OrganizerID, true)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list event types", err)
	}

	out := make([]dto.PublicEventTypeResponse, 0, len(types))
	for i := range types {
		et := &types[i]
		if et.IsPrivate {
			continue
		}
		out = append(out, dto.PublicEventTypeResponse{
			Name:            et.Name,
			Slug:            et.Slug,
			Description:     et.Description,
			DurationMinutes: et.DurationMinutes,
			MaxAttendees:    et.MaxAttendees,
			EnableWaitlist:  et.EnableWaitlist,
			LocationType:    et.LocationType,
			OrganizerName:   organizer.DisplayName,
			OrganizerSlug:   organizer.Slug,
		})
	}
	return out, nil
}

func validateEventTypeFields(name string, duration, maxAttendees, notice, horizon int, bufferBefore, bufferAfter, maxPerDay, slotInterval *int, locationType string) *errors.AppError {
	if name == "" {
		return errors.NewAppError(errors.ErrValidation, "name is required", nil)
	}
	if duration <= 0 || duration > constants.MinutesPerDay {
		return errors.NewAppError(errors.ErrValidation, "duration_minutes must be between 1 and 1440", nil)
	}
	if maxAttendees < 1 {
		return errors.NewAppError(errors.ErrValidation, "max_attendees must be at least 1", nil)
	}
	if notice < 0 {
		return errors.NewAppError(errors.ErrValidation, "min_scheduling_notice must not be negative", nil)
	}
	if horizon < 0 {
		return errors.NewAppError(errors.ErrValidation, "max_scheduling_horizon must not be negative", nil)
	}
	if bufferBefore != nil && *bufferBefore < 0 {
		return errors.NewAppError(errors.ErrValidation, "buffer_before must not be negative", nil)
	}
	if bufferAfter != nil && *bufferAfter < 0 {
		return errors.NewAppError(errors.ErrValidation, "buffer_after must not be negative", nil)
	}
	if maxPerDay != nil && *maxPerDay < 1 {
		return errors.NewAppError(errors.ErrValidation, "max_bookings_per_day must be at least 1", nil)
	}
	if slotInterval != nil && (*slotInterval <= 0 || *slotInterval > constants.MinutesPerDay) {
		return errors.NewAppError(errors.ErrValidation, "slot_interval_minutes must be between 1 and 1440", nil)
	}
	switch locationType {
	case "", entity.LocationVideoCall, entity.LocationPhoneCall, entity.LocationInPerson, entity.LocationCustom:
	default:
		return errors.NewAppError(errors.ErrValidation, fmt.Sprintf("Unknown location_type %q", locationType), nil)
	}
	return nil
}

// uniqueSlug derives a URL slug from the name, suffixing on collision.
func (s *eventTypeService) uniqueSlug(ctx context.Context, organizerID uuid.UUID, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, organizerID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *eventTypeService) Create(ctx context.Context, organizerID uuid.UUID, req *dto.CreateEventTypeRequest) (*dto.EventTypeResponse, *errors.AppError) {
	if appErr := validateEventTypeFields(req.Name, req.DurationMinutes, req.MaxAttendees,
		req.MinSchedulingNotice, req.MaxSchedulingHorizon,
		req.BufferBefore, req.BufferAfter, req.MaxBookingsPerDay, req.SlotIntervalMinutes,
		req.LocationType); appErr != nil {
		return nil, appErr
	}

	etSlug, err := s.uniqueSlug(ctx, organizerID, req.Name)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to derive slug", err)
	}

	locationType := req.LocationType
	if locationType == "" {
		locationType = entity.LocationVideoCall
	}

	created, err := s.repo.Create(ctx, &entity.EventType{
		OrganizerID:          organizerID,
		Name:                 req.Name,
		Slug:                 etSlug,
		Description:          req.Description,
		DurationMinutes:      req.DurationMinutes,
		MaxAttendees:         req.MaxAttendees,
		EnableWaitlist:       req.EnableWaitlist,
		MinSchedulingNotice:  req.MinSchedulingNotice,
		MaxSchedulingHorizon: req.MaxSchedulingHorizon,
		BufferBefore:         req.BufferBefore,
		BufferAfter:          req.BufferAfter,
		MaxBookingsPerDay:    req.MaxBookingsPerDay,
		SlotIntervalMinutes:  req.SlotIntervalMinutes,
		LocationType:         locationType,
		LocationDetails:      req.LocationDetails,
		IsActive:             true,
		IsPrivate:            req.IsPrivate,
	})
	if err != nil {
		logger.Error("EventTypeService:Create:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create event type", err)
	}

	logger.Info("EventTypeService:Create:Success",
		"organizer_id", organizerID, "event_type_id", created.ID, "slug", created.Slug)
	return dto.NewEventTypeResponse(created), nil
}

func (s *eventTypeService) Update(ctx context.Context, organizerID, id uuid.UUID, req *dto.UpdateEventTypeRequest) (*dto.EventTypeResponse, *errors.AppError) {
	if appErr := validateEventTypeFields(req.Name, req.DurationMinutes, req.MaxAttendees,
		req.MinSchedulingNotice, req.MaxSchedulingHorizon,
		req.BufferBefore, req.BufferAfter, req.MaxBookingsPerDay, req.SlotIntervalMinutes,
		req.LocationType); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event type", err)
	}
	if existing == nil || existing.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}

	// The slug is stable across renames so shared booking links keep working.
	existing.Name = req.Name
	existing.Description = req.Description
	existing.DurationMinutes = req.DurationMinutes
	existing.MaxAttendees = req.MaxAttendees
	existing.EnableWaitlist = req.EnableWaitlist
	existing.MinSchedulingNotice = req.MinSchedulingNotice
	existing.MaxSchedulingHorizon = req.MaxSchedulingHorizon
	existing.BufferBefore = req.BufferBefore
	existing.BufferAfter = req.BufferAfter
	existing.MaxBookingsPerDay = req.MaxBookingsPerDay
	existing.SlotIntervalMinutes = req.SlotIntervalMinutes
	if req.LocationType != "" {
		existing.LocationType = req.LocationType
	}
	existing.LocationDetails = req.LocationDetails
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.IsPrivate != nil {
		existing.IsPrivate = *req.IsPrivate
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		logger.Error("EventTypeService:Update:Error", "event_type_id", id, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update event type", err)
	}
	if updated == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}

	s.invalidateSlots(ctx, organizerID)
	return dto.NewEventTypeResponse(updated), nil
}

func (s *eventTypeService) Delete(ctx context.Context, organizerID, id uuid.UUID) *errors.AppError {
	if err := s.repo.Deactivate(ctx, organizerID, id); err != nil {
		logger.Error("EventTypeService:Delete:Error", "event_type_id", id, "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete event type", err)
	}
	s.invalidateSlots(ctx, organizerID)
	return nil
}

// Duration, buffers and interval changes all alter computed slots, so any
// event type write flushes the organizer's slot cache.
func (s *eventTypeService) invalidateSlots(ctx context.Context, organizerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSlots(ctx, organizerID.String()); err != nil {
		logger.Warn("EventTypeService:InvalidateSlots:Error", "organizer_id", organizerID, "error", err)
	}
}
