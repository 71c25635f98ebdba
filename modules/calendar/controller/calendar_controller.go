package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"schedulr-api/core/constants"
	coreController "schedulr-api/core/controller"
	"schedulr-api/core/errors"
	"schedulr-api/core/utils"
	"schedulr-api/modules/calendar/dto"
	"schedulr-api/modules/calendar/service"
)

type CalendarController struct {
	coreController.BaseController
	calendarService service.CalendarService
}

func NewCalendarController(s service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController:  coreController.NewBaseController(),
		calendarService: s,
	}
}

func organizerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// List returns the organizer's calendar connections.
// GET /api/v1/calendar/connections
func (ctrl *CalendarController) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	conns, appErr := ctrl.calendarService.ListConnections(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, conns, "Calendar connections retrieved")
}

// Connect stores tokens from a completed OAuth consent and kicks off the
// first sync.
// POST /api/v1/calendar/connections
func (ctrl *CalendarController) Connect(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	var req dto.ConnectRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	conn, appErr := ctrl.calendarService.Connect(ctx, organizerID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, conn, "Calendar connected")
}

// Disconnect removes a connection and retires its mirrored blocks.
// DELETE /api/v1/calendar/connections/:id
func (ctrl *CalendarController) Disconnect(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid connection id")
	}

	if appErr := ctrl.calendarService.Disconnect(ctx, organizerID, connectionID); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "Calendar disconnected")
}

// Sync runs an on-demand sync of every enabled connection.
// POST /api/v1/calendar/sync
func (ctrl *CalendarController) Sync(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	results, appErr := ctrl.calendarService.SyncOrganizer(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, results, "Calendar sync completed")
}
