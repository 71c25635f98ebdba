package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/constants"
	coreEntity "schedulr-api/core/entity"
	"schedulr-api/core/errors"
	"schedulr-api/core/logger"
	coreParams "schedulr-api/core/params"
	"schedulr-api/core/worker"
	bookingEntity "schedulr-api/modules/booking/entity"
	etEntity "schedulr-api/modules/eventtype/entity"
	"schedulr-api/modules/notification/dto"
	"schedulr-api/modules/notification/entity"
	"schedulr-api/modules/notification/repository"
)

// ReminderLead is how long before a booking starts its reminder fires.
const ReminderLead = 24 * time.Hour

// NotificationService feeds the organizer dashboard and satisfies the
// booking module's Notifier interface. Lifecycle hooks never fail the
// booking flow; errors are logged and dropped.
type NotificationService interface {
	List(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) (*coreEntity.Pagination[dto.NotificationResponse], *errors.AppError)
	MarkRead(ctx context.Context, organizerID, notificationID uuid.UUID) *errors.AppError
	UnreadCount(ctx context.Context, organizerID uuid.UUID) (*dto.UnreadCountResponse, *errors.AppError)

	BookingCreated(ctx context.Context, b *bookingEntity.Booking, et *etEntity.EventType)
	BookingCancelled(ctx context.Context, b *bookingEntity.Booking)
	BookingRescheduled(ctx context.Context, old, replacement *bookingEntity.Booking)

	// HandleReminderDue is the asynq handler for booking reminder tasks.
	HandleReminderDue(ctx context.Context, payload []byte) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	client *worker.Client
	now    func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, client *worker.Client) NotificationService {
	return &notificationService{repo: repo, client: client, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, organizerID uuid.UUID, params *coreParams.QueryParams) (*coreEntity.Pagination[dto.NotificationResponse], *errors.AppError) {
	notifications, total, err := s.repo.ListByOrganizer(ctx, organizerID, params)
	if err != nil {
		logger.Error("NotificationService:List:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list notifications", err)
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, *dto.NewNotificationResponse(&notifications[i]))
	}
	return &coreEntity.Pagination[dto.NotificationResponse]{
		Items:      items,
		TotalItems: total,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, organizerID, notificationID uuid.UUID) *errors.AppError {
	if err := s.repo.MarkRead(ctx, organizerID, notificationID); err != nil {
		logger.Error("NotificationService:MarkRead:Error", "notification_id", notificationID, "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, organizerID uuid.UUID) (*dto.UnreadCountResponse, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, organizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to count notifications", err)
	}
	return &dto.UnreadCountResponse{Unread: count}, nil
}

func bookingPayload(b *bookingEntity.Booking) entity.JSONB {
	return entity.JSONB{
		"booking_id":     b.ID.String(),
		"invitee_name":   b.InviteeName,
		"invitee_email":  b.InviteeEmail,
		"start_time":     b.StartTime.UTC().Format(time.RFC3339),
		"end_time":       b.EndTime.UTC().Format(time.RFC3339),
		"attendee_count": b.AttendeeCount,
		"status":         b.Status,
	}
}

func (s *notificationService) record(ctx context.Context, n *entity.Notification) *entity.Notification {
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		logger.Error("NotificationService:Record:Error",
			"organizer_id", n.OrganizerID, "type", n.Type, "error", err)
		return nil
	}
	return created
}

func (s *notificationService) BookingCreated(ctx context.Context, b *bookingEntity.Booking, et *etEntity.EventType) {
	bookingID := b.ID
	payload := bookingPayload(b)
	payload["event_type"] = et.Name

	s.record(ctx, &entity.Notification{
		OrganizerID: b.OrganizerID,
		BookingID:   &bookingID,
		Type:        entity.TypeBookingCreated,
		Title:       fmt.Sprintf("New booking: %s with %s", et.Name, b.InviteeName),
		Payload:     payload,
		Status:      entity.StatusPending,
	})

	s.scheduleReminder(ctx, b, et)
}

// scheduleReminder records a reminder entry and hands it to asynq for the
// lead-adjusted instant. Bookings starting inside the lead window get no
// reminder.
func (s *notificationService) scheduleReminder(ctx context.Context, b *bookingEntity.Booking, et *etEntity.EventType) {
	remindAt := b.StartTime.Add(-ReminderLead)
	if !remindAt.After(s.now()) {
		return
	}

	bookingID := b.ID
	reminder := s.record(ctx, &entity.Notification{
		OrganizerID:  b.OrganizerID,
		BookingID:    &bookingID,
		Type:         entity.TypeBookingReminder,
		Title:        fmt.Sprintf("Upcoming: %s with %s", et.Name, b.InviteeName),
		Payload:      bookingPayload(b),
		Status:       entity.StatusScheduled,
		ScheduledFor: &remindAt,
	})
	if reminder == nil {
		return
	}

	payload, err := json.Marshal(reminderTask{NotificationID: reminder.ID})
	if err != nil {
		logger.Error("NotificationService:ScheduleReminder:MarshalError", "error", err)
		return
	}
	if err := s.client.EnqueueAt(constants.TaskBookingReminder, payload, remindAt); err != nil {
		logger.Error("NotificationService:ScheduleReminder:EnqueueError",
			"notification_id", reminder.ID, "error", err)
	}
}

func (s *notificationService) BookingCancelled(ctx context.Context, b *bookingEntity.Booking) {
	bookingID := b.ID
	payload := bookingPayload(b)
	payload["cancelled_by"] = b.CancelledBy
	payload["cancellation_reason"] = b.CancellationReason

	s.record(ctx, &entity.Notification{
		OrganizerID: b.OrganizerID,
		BookingID:   &bookingID,
		Type:        entity.TypeBookingCancelled,
		Title:       fmt.Sprintf("Cancelled: booking with %s", b.InviteeName),
		Payload:     payload,
		Status:      entity.StatusPending,
	})
}

func (s *notificationService) BookingRescheduled(ctx context.Context, old, replacement *bookingEntity.Booking) {
	bookingID := replacement.ID
	payload := bookingPayload(replacement)
	payload["previous_start_time"] = old.StartTime.UTC().Format(time.RFC3339)

	s.record(ctx, &entity.Notification{
		OrganizerID: replacement.OrganizerID,
		BookingID:   &bookingID,
		Type:        entity.TypeBookingRescheduled,
		Title:       fmt.Sprintf("Rescheduled: booking with %s", replacement.InviteeName),
		Payload:     payload,
		Status:      entity.StatusPending,
	})
}

type reminderTask struct {
	NotificationID uuid.UUID `json:"notification_id"`
}

func (s *notificationService) HandleReminderDue(ctx context.Context, payload []byte) error {
	var task reminderTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("decode reminder payload: %w", err)
	}

	reminder, err := s.repo.GetByID(ctx, task.NotificationID)
	if err != nil {
		return fmt.Errorf("load reminder %s: %w", task.NotificationID, err)
	}
	if reminder == nil {
		// Already pruned; nothing to surface.
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, reminder.ID, entity.StatusDue); err != nil {
		return fmt.Errorf("mark reminder due: %w", err)
	}
	logger.Info("NotificationService:HandleReminderDue:Success",
		"notification_id", reminder.ID, "organizer_id", reminder.OrganizerID)
	return nil
}
