package dto

import (
	"time"

	"github.com/google/uuid"

	"schedulr-api/modules/notification/entity"
)

type NotificationResponse struct {
	ID           uuid.UUID      `json:"id"`
	BookingID    *uuid.UUID     `json:"booking_id,omitempty"`
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Payload      map[string]any `json:"payload"`
	Status       string         `json:"status"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	IsRead       bool           `json:"is_read"`
	CreatedAt    time.Time      `json:"created_at"`
}

func NewNotificationResponse(n *entity.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:           n.ID,
		BookingID:    n.BookingID,
		Type:         n.Type,
		Title:        n.Title,
		Payload:      n.Payload,
		Status:       n.Status,
		ScheduledFor: n.ScheduledFor,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt,
	}
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
