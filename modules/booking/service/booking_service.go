package service

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"

	coreEntity "schedulr-api/core/entity"
	"schedulr-api/core/errors"
	"schedulr-api/core/logger"
	coreParams "schedulr-api/core/params"
	"schedulr-api/core/utils"
	availRepository "schedulr-api/modules/availability/repository"
	availService "schedulr-api/modules/availability/service"
	"schedulr-api/modules/booking/dto"
	"schedulr-api/modules/booking/entity"
	"schedulr-api/modules/booking/repository"
	etEntity "schedulr-api/modules/eventtype/entity"
	etRepository "schedulr-api/modules/eventtype/repository"
)

// Notifier records booking lifecycle events. Implemented by the
// notification module; a nil Notifier disables notifications.
type Notifier interface {
	BookingCreated(ctx context.Context, b *entity.Booking, et *etEntity.EventType)
	BookingCancelled(ctx context.Context, b *entity.Booking)
	BookingRescheduled(ctx context.Context, old, replacement *entity.Booking)
}

type BookingService interface {
	CreateBooking(ctx context.Context, organizerSlug, eventTypeSlug string, req *dto.CreateBookingRequest) (*dto.BookingResponse, *errors.AppError)
	GetByAccessToken(ctx context.Context, token string) (*dto.BookingResponse, *errors.AppError)
	Cancel(ctx context.Context, token string, req *dto.CancelBookingRequest) (*dto.BookingResponse, *errors.AppError)
	CancelByOrganizer(ctx context.Context, organizerID, bookingID uuid.UUID, reason string) (*dto.BookingResponse, *errors.AppError)
	Reschedule(ctx context.Context, token string, req *dto.RescheduleBookingRequest) (*dto.BookingResponse, *errors.AppError)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) (*coreEntity.Pagination[dto.BookingResponse], *errors.AppError)
	MarkOutcome(ctx context.Context, organizerID, bookingID uuid.UUID, status string) (*dto.BookingResponse, *errors.AppError)
}

type bookingService struct {
	repo      repository.BookingRepository
	etRepo    etRepository.EventTypeRepository
	availRepo availRepository.AvailabilityRepository
	availSvc  availService.AvailabilityService
	notifier  Notifier
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	etRepo etRepository.EventTypeRepository,
	availRepo availRepository.AvailabilityRepository,
	availSvc availService.AvailabilityService,
	notifier Notifier,
) BookingService {
	return &bookingService{
		repo:      repo,
		etRepo:    etRepo,
		availRepo: availRepo,
		availSvc:  availSvc,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, organizerSlug, eventTypeSlug string, req *dto.CreateBookingRequest) (*dto.BookingResponse, *errors.AppError) {
	organizer, err := s.availRepo.GetOrganizerBySlug(ctx, organizerSlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load organizer", err)
	}
	if organizer == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Organizer not found", nil)
	}

	et, err := s.etRepo.GetBySlug(ctx, organizer.OrganizerID, eventTypeSlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event type", err)
	}
	if et == nil || !et.IsActive {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}

	if appErr := validateInvitee(req); appErr != nil {
		return nil, appErr
	}
	attendeeCount := req.AttendeeCount
	if attendeeCount == 0 {
		attendeeCount = 1
	}

	loc, lerr := time.LoadLocation(organizer.Timezone)
	if lerr != nil {
		return nil, errors.NewAppError(errors.ErrConfiguration, "Organizer timezone is not a valid IANA zone", lerr)
	}

	start := req.StartTime.UTC()
	end := start.Add(time.Duration(et.DurationMinutes) * time.Minute)
	day := availService.LocalDateOf(start, loc)

	slots, appErr := s.availSvc.ComputeSlotsForDay(ctx, et, day)
	if appErr != nil {
		return nil, appErr
	}
	status, appErr := ValidateSlot(slots, start, end, attendeeCount, et)
	if appErr != nil {
		return nil, appErr
	}

	booking := &entity.Booking{
		OrganizerID:     organizer.OrganizerID,
		EventTypeID:     et.ID,
		InviteeName:     req.InviteeName,
		InviteeEmail:    req.InviteeEmail,
		InviteePhone:    req.InviteePhone,
		InviteeTimezone: req.InviteeTimezone,
		StartTime:       start,
		EndTime:         end,
		AttendeeCount:   attendeeCount,
		Status:          status,
		AccessToken:     utils.GenerateAccessToken(),
		Notes:           req.Notes,
	}

	created, err := s.repo.CreateSerialized(ctx, booking, et.MaxAttendees)
	if err != nil {
		if appErr := mapInsertError(err); appErr != nil {
			return nil, appErr
		}
		logger.Error("BookingService:CreateBooking:InsertError",
			"organizer_id", organizer.OrganizerID, "event_type_id", et.ID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create booking", err)
	}

	s.availSvc.InvalidateSlotCache(ctx, organizer.OrganizerID)
	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, created, et)
	}

	logger.Info("BookingService:CreateBooking:Success",
		"booking_id", created.ID,
		"organizer_id", organizer.OrganizerID,
		"event_type_id", et.ID,
		"start_time", created.StartTime,
		"status", created.Status,
	)

	resp := dto.NewBookingResponse(created)
	resp.AccessToken = created.AccessToken
	return resp, nil
}

func validateInvitee(req *dto.CreateBookingRequest) *errors.AppError {
	if req.StartTime.IsZero() {
		return errors.NewAppError(errors.ErrValidation, "start_time is required", nil)
	}
	if req.InviteeName == "" {
		return errors.NewAppError(errors.ErrValidation, "invitee_name is required", nil)
	}
	if !utils.IsValidEmail(req.InviteeEmail) {
		return errors.NewAppError(errors.ErrValidation, "invitee_email is not a valid address", nil)
	}
	if req.AttendeeCount < 0 {
		return errors.NewAppError(errors.ErrValidation, "attendee_count must be at least 1", nil)
	}
	if req.InviteeTimezone != "" {
		if _, err := time.LoadLocation(req.InviteeTimezone); err != nil {
			return errors.NewAppError(errors.ErrValidation, "invitee_timezone is not a valid IANA zone", err)
		}
	}
	return nil
}

func mapInsertError(err error) *errors.AppError {
	switch {
	case stdErrors.Is(err, repository.ErrSlotTaken):
		return errors.NewAppError(errors.ErrSlotUnavailable, "The requested slot is no longer available", err)
	case stdErrors.Is(err, repository.ErrCapacityFull):
		return errors.NewAppError(errors.ErrCapacityExceeded, "Not enough spots left on the requested slot", err)
	default:
		return nil
	}
}

func (s *bookingService) GetByAccessToken(ctx context.Context, token string) (*dto.BookingResponse, *errors.AppError) {
	booking, err := s.repo.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load booking", err)
	}
	if booking == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	return dto.NewBookingResponse(booking), nil
}

func (s *bookingService) Cancel(ctx context.Context, token string, req *dto.CancelBookingRequest) (*dto.BookingResponse, *errors.AppError) {
	booking, err := s.repo.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load booking", err)
	}
	if booking == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	return s.cancel(ctx, booking, req.Reason, entity.CancelledByInvitee)
}

func (s *bookingService) CancelByOrganizer(ctx context.Context, organizerID, bookingID uuid.UUID, reason string) (*dto.BookingResponse, *errors.AppError) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load booking", err)
	}
	if booking == nil || booking.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	return s.cancel(ctx, booking, reason, entity.CancelledByOrganizer)
}

func (s *bookingService) cancel(ctx context.Context, booking *entity.Booking, reason, by string) (*dto.BookingResponse, *errors.AppError) {
	if !booking.IsActive() {
		return nil, errors.NewAppError(errors.ErrValidation, "Booking is not active", nil)
	}

	cancelled, err := s.repo.UpdateStatus(ctx, booking.ID, entity.StatusCancelled, reason, by)
	if err != nil {
		logger.Error("BookingService:Cancel:Error", "booking_id", booking.ID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to cancel booking", err)
	}
	if cancelled == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}

	s.availSvc.InvalidateSlotCache(ctx, booking.OrganizerID)
	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, cancelled)
	}

	logger.Info("BookingService:Cancel:Success",
		"booking_id", cancelled.ID, "cancelled_by", by)
	return dto.NewBookingResponse(cancelled), nil
}

func (s *bookingService) Reschedule(ctx context.Context, token string, req *dto.RescheduleBookingRequest) (*dto.BookingResponse, *errors.AppError) {
	old, err := s.repo.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load booking", err)
	}
	if old == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if !old.IsActive() {
		return nil, errors.NewAppError(errors.ErrValidation, "Booking is not active", nil)
	}
	if req.StartTime.IsZero() {
		return nil, errors.NewAppError(errors.ErrValidation, "start_time is required", nil)
	}

	et, err := s.etRepo.GetByID(ctx, old.EventTypeID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event type", err)
	}
	if et == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event type not found", nil)
	}

	organizer, err := s.availRepo.GetOrganizerByID(ctx, old.OrganizerID)
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

	start := req.StartTime.UTC()
	end := start.Add(time.Duration(et.DurationMinutes) * time.Minute)
	day := availService.LocalDateOf(start, loc)

	slots, appErr := s.availSvc.ComputeSlotsForDay(ctx, et, day)
	if appErr != nil {
		return nil, appErr
	}
	status, appErr := ValidateSlot(slots, start, end, old.AttendeeCount, et)
	if appErr != nil {
		return nil, appErr
	}

	oldID := old.ID
	replacement := &entity.Booking{
		OrganizerID:       old.OrganizerID,
		EventTypeID:       old.EventTypeID,
		InviteeName:       old.InviteeName,
		InviteeEmail:      old.InviteeEmail,
		InviteePhone:      old.InviteePhone,
		InviteeTimezone:   old.InviteeTimezone,
		StartTime:         start,
		EndTime:           end,
		AttendeeCount:     old.AttendeeCount,
		Status:            status,
		AccessToken:       utils.GenerateAccessToken(),
		Notes:             old.Notes,
		RescheduledFromID: &oldID,
	}

	created, err := s.repo.RescheduleSerialized(ctx, old, replacement, et.MaxAttendees)
	if err != nil {
		if appErr := mapInsertError(err); appErr != nil {
			return nil, appErr
		}
		logger.Error("BookingService:Reschedule:Error", "booking_id", old.ID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to reschedule booking", err)
	}

	s.availSvc.InvalidateSlotCache(ctx, old.OrganizerID)
	if s.notifier != nil {
		s.notifier.BookingRescheduled(ctx, old, created)
	}

	logger.Info("BookingService:Reschedule:Success",
		"old_booking_id", old.ID, "new_booking_id", created.ID, "start_time", created.StartTime)

	resp := dto.NewBookingResponse(created)
	resp.AccessToken = created.AccessToken
	return resp, nil
}

// MarkOutcome records whether a past confirmed booking actually happened.
func (s *bookingService) MarkOutcome(ctx context.Context, organizerID, bookingID uuid.UUID, status string) (*dto.BookingResponse, *errors.AppError) {
	if status != entity.StatusCompleted && status != entity.StatusNoShow {
		return nil, errors.NewAppError(errors.ErrValidation, "status must be completed or no_show", nil)
	}

	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load booking", err)
	}
	if booking == nil || booking.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if booking.Status != entity.StatusConfirmed {
		return nil, errors.NewAppError(errors.ErrValidation, "Only confirmed bookings can have an outcome", nil)
	}
	if booking.EndTime.After(s.now().UTC()) {
		return nil, errors.NewAppError(errors.ErrValidation, "Booking has not ended yet", nil)
	}

	updated, err := s.repo.UpdateStatus(ctx, booking.ID, status, "", "")
	if err != nil {
		logger.Error("BookingService:MarkOutcome:Error", "booking_id", booking.ID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update booking", err)
	}
	if updated == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}

	logger.Info("BookingService:MarkOutcome:Success", "booking_id", updated.ID, "status", status)
	return dto.NewBookingResponse(updated), nil
}

func (s *bookingService) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) (*coreEntity.Pagination[dto.BookingResponse], *errors.AppError) {
	bookings, total, err := s.repo.ListByOrganizer(ctx, organizerID, params)
	if err != nil {
		logger.Error("BookingService:ListByOrganizer:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list bookings", err)
	}

	items := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, *dto.NewBookingResponse(&bookings[i]))
	}
	return &coreEntity.Pagination[dto.BookingResponse]{
		Items:      items,
		TotalItems: total,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}
