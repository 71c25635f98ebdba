package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/errors"
	availEntity "schedulr-api/modules/availability/entity"
	availRepository "schedulr-api/modules/availability/repository"
	availService "schedulr-api/modules/availability/service"
	"schedulr-api/modules/booking/dto"
	"schedulr-api/modules/booking/entity"
	"schedulr-api/modules/booking/repository"
	etEntity "schedulr-api/modules/eventtype/entity"
	etRepository "schedulr-api/modules/eventtype/repository"
)

var (
	bkOrganizerID = uuid.MustParse("7b9f2a4e-1c3d-4e5f-8a6b-9c0d1e2f3a4b")
	bkEventTypeID = uuid.MustParse("c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f")
)

// The fakes embed the interfaces they stand in for so only the methods the
// booking flow touches need bodies.

type fakeBookingRepo struct {
	repository.BookingRepository
	byID      map[uuid.UUID]*entity.Booking
	byToken   map[string]*entity.Booking
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:    map[uuid.UUID]*entity.Booking{},
		byToken: map[string]*entity.Booking{},
	}
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) GetByAccessToken(_ context.Context, token string) (*entity.Booking, error) {
	b, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) CreateSerialized(_ context.Context, b *entity.Booking, _ int) (*entity.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *b
	created.ID = uuid.New()
	f.byID[created.ID] = &created
	f.byToken[created.AccessToken] = &created
	clone := created
	return &clone, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status, reason, by string) (*entity.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	b.Status = status
	b.CancellationReason = reason
	b.CancelledBy = by
	now := time.Now().UTC()
	b.CancelledAt = &now
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) RescheduleSerialized(_ context.Context, old, replacement *entity.Booking, maxAttendees int) (*entity.Booking, error) {
	if prev, ok := f.byID[old.ID]; ok {
		prev.Status = entity.StatusRescheduled
	}
	return f.CreateSerialized(context.Background(), replacement, maxAttendees)
}

type fakeEventTypes struct {
	etRepository.EventTypeRepository
	et *etEntity.EventType
}

func (f *fakeEventTypes) GetByID(_ context.Context, id uuid.UUID) (*etEntity.EventType, error) {
	if f.et == nil || f.et.ID != id {
		return nil, nil
	}
	clone := *f.et
	return &clone, nil
}

func (f *fakeEventTypes) GetBySlug(_ context.Context, organizerID uuid.UUID, slug string) (*etEntity.EventType, error) {
	if f.et == nil || f.et.Slug != slug || f.et.OrganizerID != organizerID {
		return nil, nil
	}
	clone := *f.et
	return &clone, nil
}

type fakeOrganizers struct {
	availRepository.AvailabilityRepository
	organizer *availEntity.OrganizerSettings
}

func (f *fakeOrganizers) GetOrganizerByID(_ context.Context, organizerID uuid.UUID) (*availEntity.OrganizerSettings, error) {
	if f.organizer == nil || f.organizer.OrganizerID != organizerID {
		return nil, nil
	}
	return f.organizer, nil
}

func (f *fakeOrganizers) GetOrganizerBySlug(_ context.Context, slug string) (*availEntity.OrganizerSettings, error) {
	if f.organizer == nil || f.organizer.Slug != slug {
		return nil, nil
	}
	return f.organizer, nil
}

type fakeAvailability struct {
	availService.AvailabilityService
	slots       []availEntity.TimeSlot
	invalidated int
}

func (f *fakeAvailability) ComputeSlotsForDay(_ context.Context, _ *etEntity.EventType, _ availService.LocalDate) ([]availEntity.TimeSlot, *errors.AppError) {
	return f.slots, nil
}

func (f *fakeAvailability) InvalidateSlotCache(_ context.Context, _ uuid.UUID) {
	f.invalidated++
}

type recordingNotifier struct {
	created, cancelled, rescheduled int
}

func (n *recordingNotifier) BookingCreated(context.Context, *entity.Booking, *etEntity.EventType) {
	n.created++
}
func (n *recordingNotifier) BookingCancelled(context.Context, *entity.Booking) { n.cancelled++ }
func (n *recordingNotifier) BookingRescheduled(context.Context, *entity.Booking, *entity.Booking) {
	n.rescheduled++
}

func bookingEventType() *etEntity.EventType {
	et := &etEntity.EventType{
		Name:            "Intro Call",
		Slug:            "intro-call",
		DurationMinutes: 30,
		MaxAttendees:    1,
		IsActive:        true,
	}
	et.ID = bkEventTypeID
	et.OrganizerID = bkOrganizerID
	return et
}

type bookingFixture struct {
	svc      BookingService
	repo     *fakeBookingRepo
	avail    *fakeAvailability
	notifier *recordingNotifier
}

func newBookingFixture() *bookingFixture {
	repo := newFakeBookingRepo()
	avail := &fakeAvailability{slots: slotList()}
	notifier := &recordingNotifier{}
	organizers := &fakeOrganizers{organizer: &availEntity.OrganizerSettings{
		OrganizerID: bkOrganizerID,
		Slug:        "dana",
		DisplayName: "Dana",
		Timezone:    "America/New_York",
	}}
	etRepo := &fakeEventTypes{et: bookingEventType()}

	return &bookingFixture{
		svc:      NewBookingService(repo, etRepo, organizers, avail, notifier),
		repo:     repo,
		avail:    avail,
		notifier: notifier,
	}
}

func createRequest() *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		InviteeName:     "Sam Lee",
		InviteeEmail:    "sam@example.com",
		InviteeTimezone: "Europe/Berlin",
		StartTime:       utc(2026, 3, 2, 14, 0),
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	fx := newBookingFixture()

	resp, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", createRequest())
	if appErr != nil {
		t.Fatalf("CreateBooking: %v", appErr)
	}
	if resp.Status != entity.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", resp.Status)
	}
	if resp.AccessToken == "" {
		t.Error("access token missing from create response")
	}
	if !resp.EndTime.Equal(utc(2026, 3, 2, 14, 30)) {
		t.Errorf("end_time = %v, want 14:30 UTC", resp.EndTime)
	}
	if fx.avail.invalidated != 1 {
		t.Errorf("cache invalidations = %d, want 1", fx.avail.invalidated)
	}
	if fx.notifier.created != 1 {
		t.Errorf("notifier created = %d, want 1", fx.notifier.created)
	}
}

func TestCreateBookingRaceMapping(t *testing.T) {
	tests := []struct {
		name     string
		insert   error
		wantCode string
	}{
		{name: "slot taken", insert: repository.ErrSlotTaken, wantCode: "SLOT_UNAVAILABLE"},
		{name: "capacity full", insert: repository.ErrCapacityFull, wantCode: "CAPACITY_EXCEEDED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newBookingFixture()
			fx.repo.createErr = tt.insert

			_, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", createRequest())
			if appErr == nil || string(appErr.Code) != tt.wantCode {
				t.Errorf("appErr = %v, want %s", appErr, tt.wantCode)
			}
			if fx.notifier.created != 0 {
				t.Errorf("notifier fired on failed insert")
			}
		})
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*dto.CreateBookingRequest)
		wantCode string
	}{
		{
			name:     "missing name",
			mutate:   func(r *dto.CreateBookingRequest) { r.InviteeName = "" },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "bad email",
			mutate:   func(r *dto.CreateBookingRequest) { r.InviteeEmail = "not-an-email" },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "missing start",
			mutate:   func(r *dto.CreateBookingRequest) { r.StartTime = time.Time{} },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "bad timezone",
			mutate:   func(r *dto.CreateBookingRequest) { r.InviteeTimezone = "Mars/Olympus" },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "start not on an offered slot",
			mutate:   func(r *dto.CreateBookingRequest) { r.StartTime = utc(2026, 3, 2, 16, 0) },
			wantCode: "SLOT_UNAVAILABLE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newBookingFixture()
			req := createRequest()
			tt.mutate(req)

			_, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", req)
			if appErr == nil || string(appErr.Code) != tt.wantCode {
				t.Errorf("appErr = %v, want %s", appErr, tt.wantCode)
			}
		})
	}
}

func TestCreateBookingUnknownLookups(t *testing.T) {
	fx := newBookingFixture()

	_, appErr := fx.svc.CreateBooking(context.Background(), "nobody", "intro-call", createRequest())
	if appErr == nil || string(appErr.Code) != "NOT_FOUND" {
		t.Errorf("unknown organizer: appErr = %v, want NOT_FOUND", appErr)
	}

	_, appErr = fx.svc.CreateBooking(context.Background(), "dana", "deep-dive", createRequest())
	if appErr == nil || string(appErr.Code) != "NOT_FOUND" {
		t.Errorf("unknown event type: appErr = %v, want NOT_FOUND", appErr)
	}
}

func TestCancelByInvitee(t *testing.T) {
	fx := newBookingFixture()
	created, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", createRequest())
	if appErr != nil {
		t.Fatalf("CreateBooking: %v", appErr)
	}

	cancelled, appErr := fx.svc.Cancel(context.Background(), created.AccessToken, &dto.CancelBookingRequest{Reason: "conflict"})
	if appErr != nil {
		t.Fatalf("Cancel: %v", appErr)
	}
	if cancelled.Status != entity.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if fx.notifier.cancelled != 1 {
		t.Errorf("notifier cancelled = %d, want 1", fx.notifier.cancelled)
	}

	// A cancelled booking cannot be cancelled again.
	_, appErr = fx.svc.Cancel(context.Background(), created.AccessToken, &dto.CancelBookingRequest{})
	if appErr == nil || string(appErr.Code) != "VALIDATION_ERROR" {
		t.Errorf("second cancel: appErr = %v, want VALIDATION_ERROR", appErr)
	}
}

func TestCancelByOrganizerOwnership(t *testing.T) {
	fx := newBookingFixture()
	created, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", createRequest())
	if appErr != nil {
		t.Fatalf("CreateBooking: %v", appErr)
	}

	other := uuid.MustParse("0f0e0d0c-0b0a-4908-8706-050403020100")
	_, appErr = fx.svc.CancelByOrganizer(context.Background(), other, created.ID, "nope")
	if appErr == nil || string(appErr.Code) != "NOT_FOUND" {
		t.Errorf("foreign organizer cancel: appErr = %v, want NOT_FOUND", appErr)
	}

	cancelled, appErr := fx.svc.CancelByOrganizer(context.Background(), bkOrganizerID, created.ID, "emergency")
	if appErr != nil {
		t.Fatalf("CancelByOrganizer: %v", appErr)
	}
	if cancelled.Status != entity.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
}

func TestMarkOutcome(t *testing.T) {
	fx := newBookingFixture()
	created, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", createRequest())
	if appErr != nil {
		t.Fatalf("CreateBooking: %v", appErr)
	}

	// The booking ends 2026-03-02 14:30 UTC; the clock is still before that.
	fx.svc.(*bookingService).now = func() time.Time { return utc(2026, 3, 2, 14, 15) }
	_, appErr = fx.svc.MarkOutcome(context.Background(), bkOrganizerID, created.ID, entity.StatusCompleted)
	if appErr == nil || string(appErr.Code) != "VALIDATION_ERROR" {
		t.Errorf("outcome before end: appErr = %v, want VALIDATION_ERROR", appErr)
	}

	fx.svc.(*bookingService).now = func() time.Time { return utc(2026, 3, 3, 9, 0) }

	_, appErr = fx.svc.MarkOutcome(context.Background(), bkOrganizerID, created.ID, "attended")
	if appErr == nil || string(appErr.Code) != "VALIDATION_ERROR" {
		t.Errorf("unknown outcome: appErr = %v, want VALIDATION_ERROR", appErr)
	}

	other := uuid.MustParse("0f0e0d0c-0b0a-4908-8706-050403020100")
	_, appErr = fx.svc.MarkOutcome(context.Background(), other, created.ID, entity.StatusNoShow)
	if appErr == nil || string(appErr.Code) != "NOT_FOUND" {
		t.Errorf("foreign organizer outcome: appErr = %v, want NOT_FOUND", appErr)
	}

	updated, appErr := fx.svc.MarkOutcome(context.Background(), bkOrganizerID, created.ID, entity.StatusCompleted)
	if appErr != nil {
		t.Fatalf("MarkOutcome: %v", appErr)
	}
	if updated.Status != entity.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}

	// A completed booking is settled.
	_, appErr = fx.svc.MarkOutcome(context.Background(), bkOrganizerID, created.ID, entity.StatusNoShow)
	if appErr == nil || string(appErr.Code) != "VALIDATION_ERROR" {
		t.Errorf("second outcome: appErr = %v, want VALIDATION_ERROR", appErr)
	}
}

func TestReschedule(t *testing.T) {
	fx := newBookingFixture()
	created, appErr := fx.svc.CreateBooking(context.Background(), "dana", "intro-call", createRequest())
	if appErr != nil {
		t.Fatalf("CreateBooking: %v", appErr)
	}

	moved, appErr := fx.svc.Reschedule(context.Background(), created.AccessToken, &dto.RescheduleBookingRequest{
		StartTime: utc(2026, 3, 2, 14, 30),
	})
	if appErr != nil {
		t.Fatalf("Reschedule: %v", appErr)
	}
	if !moved.StartTime.Equal(utc(2026, 3, 2, 14, 30)) {
		t.Errorf("start_time = %v, want 14:30 UTC", moved.StartTime)
	}
	if moved.AccessToken == "" || moved.AccessToken == created.AccessToken {
		t.Error("reschedule must mint a fresh access token")
	}
	if moved.RescheduledFromID == nil || *moved.RescheduledFromID != created.ID {
		t.Errorf("rescheduled_from_id = %v, want %v", moved.RescheduledFromID, created.ID)
	}
	if fx.notifier.rescheduled != 1 {
		t.Errorf("notifier rescheduled = %d, want 1", fx.notifier.rescheduled)
	}

	// The original is retired, so its manage token no longer reschedules.
	_, appErr = fx.svc.Reschedule(context.Background(), created.AccessToken, &dto.RescheduleBookingRequest{
		StartTime: utc(2026, 3, 2, 14, 0),
	})
	if appErr == nil || string(appErr.Code) != "VALIDATION_ERROR" {
		t.Errorf("stale token reschedule: appErr = %v, want VALIDATION_ERROR", appErr)
	}

	_, appErr = fx.svc.Reschedule(context.Background(), moved.AccessToken, &dto.RescheduleBookingRequest{
		StartTime: utc(2026, 3, 2, 20, 0),
	})
	if appErr == nil || string(appErr.Code) != "SLOT_UNAVAILABLE" {
		t.Errorf("off-slot reschedule: appErr = %v, want SLOT_UNAVAILABLE", appErr)
	}
}
