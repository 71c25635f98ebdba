package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"schedulr-api/core/constants"
	coreController "schedulr-api/core/controller"
	"schedulr-api/core/errors"
	coreParams "schedulr-api/core/params"
	"schedulr-api/core/utils"
	"schedulr-api/modules/notification/service"
)

type NotificationController struct {
	coreController.BaseController
	notificationService service.NotificationService
}

func NewNotificationController(s service.NotificationService) *NotificationController {
	return &NotificationController{
		BaseController:      coreController.NewBaseController(),
		notificationService: s,
	}
}

func organizerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// List returns the organizer's notification feed, newest first.
// GET /api/v1/notifications
func (ctrl *NotificationController) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	params := coreParams.NewQueryParams(c)
	page, appErr := ctrl.notificationService.List(ctx, organizerID, &params)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, page, "Notifications retrieved")
}

// MarkRead flags one notification as read.
// POST /api/v1/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid notification id")
	}

	if appErr := ctrl.notificationService.MarkRead(ctx, organizerID, notificationID); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "Notification marked read")
}

// UnreadCount serves the dashboard badge.
// GET /api/v1/notifications/unread-count
func (ctrl *NotificationController) UnreadCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	count, appErr := ctrl.notificationService.UnreadCount(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, count, "Unread count retrieved")
}
