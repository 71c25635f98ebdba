package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"schedulr-api/core/constants"
	coreController "schedulr-api/core/controller"
	"schedulr-api/core/errors"
	"schedulr-api/core/utils"
	"schedulr-api/modules/eventtype/dto"
	"schedulr-api/modules/eventtype/service"
)

type EventTypeController struct {
	coreController.BaseController
	eventTypeService service.EventTypeService
}

func NewEventTypeController(s service.EventTypeService) *EventTypeController {
	return &EventTypeController{
		BaseController:   coreController.NewBaseController(),
		eventTypeService: s,
	}
}

func organizerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func (ctrl *EventTypeController) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	types, appErr := ctrl.eventTypeService.List(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, types, "Event types retrieved")
}

func (ctrl *EventTypeController) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid event type id")
	}

	et, appErr := ctrl.eventTypeService.Get(ctx, organizerID, id)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, et, "Event type retrieved")
}

// GetPublic serves the invitee-facing booking page header.
// GET /api/v1/public/:organizerSlug/:eventTypeSlug
func (ctrl *EventTypeController) GetPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	et, appErr := ctrl.eventTypeService.GetPublic(ctx, c.Param("organizerSlug"), c.Param("eventTypeSlug"))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, et, "Event type retrieved")
}

// ListPublic serves the organizer's public booking page.
// GET /api/v1/public/:organizerSlug
func (ctrl *EventTypeController) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	types, appErr := ctrl.eventTypeService.ListPublic(ctx, c.Param("organizerSlug"))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, types, "Event types retrieved")
}

func (ctrl *EventTypeController) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	var req dto.CreateEventTypeRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	et, appErr := ctrl.eventTypeService.Create(ctx, organizerID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, et, "Event type created")
}

func (ctrl *EventTypeController) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid event type id")
	}

	var req dto.UpdateEventTypeRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	et, appErr := ctrl.eventTypeService.Update(ctx, organizerID, id, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, et, "Event type updated")
}

func (ctrl *EventTypeController) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid event type id")
	}

	if appErr := ctrl.eventTypeService.Delete(ctx, organizerID, id); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "Event type deleted")
}
