package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"schedulr-api/core/constants"
	coreController "schedulr-api/core/controller"
	"schedulr-api/core/errors"
	"schedulr-api/core/utils"
	"schedulr-api/modules/availability/dto"
	"schedulr-api/modules/availability/service"
)

type AvailabilityController struct {
	coreController.BaseController
	availabilityService service.AvailabilityService
}

func NewAvailabilityController(s service.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      coreController.NewBaseController(),
		availabilityService: s,
	}
}

func organizerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// GetSlots is the public availability endpoint.
// GET /api/v1/public/:organizerSlug/:eventTypeSlug/slots
func (ctrl *AvailabilityController) GetSlots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	q := &dto.SlotQuery{
		OrganizerSlug: c.Param("organizerSlug"),
		EventTypeSlug: c.Param("eventTypeSlug"),
		StartDate:     c.QueryParam("start_date"),
		EndDate:       c.QueryParam("end_date"),
		Timezone:      c.QueryParam("timezone"),
	}

	resp, appErr := ctrl.availabilityService.GetAvailableSlots(ctx, q)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "Available slots computed")
}

func (ctrl *AvailabilityController) ListRules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	rules, appErr := ctrl.availabilityService.ListRules(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, rules, "Availability rules retrieved")
}

func (ctrl *AvailabilityController) CreateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	var req dto.RuleRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	rule, appErr := ctrl.availabilityService.CreateRule(ctx, organizerID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, rule, "Availability rule created")
}

func (ctrl *AvailabilityController) UpdateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid rule id")
	}

	var req dto.RuleRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	rule, appErr := ctrl.availabilityService.UpdateRule(ctx, organizerID, ruleID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, rule, "Availability rule updated")
}

func (ctrl *AvailabilityController) DeleteRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid rule id")
	}

	if appErr := ctrl.availabilityService.DeleteRule(ctx, organizerID, ruleID); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "Availability rule deleted")
}

func (ctrl *AvailabilityController) ListOverrides(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	overrides, appErr := ctrl.availabilityService.ListOverrides(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, overrides, "Date overrides retrieved")
}

func (ctrl *AvailabilityController) CreateOverride(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	var req dto.OverrideRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	o, appErr := ctrl.availabilityService.CreateOverride(ctx, organizerID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, o, "Date override created")
}

func (ctrl *AvailabilityController) UpdateOverride(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	overrideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid override id")
	}

	var req dto.OverrideRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	o, appErr := ctrl.availabilityService.UpdateOverride(ctx, organizerID, overrideID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, o, "Date override updated")
}

func (ctrl *AvailabilityController) DeleteOverride(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	overrideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid override id")
	}

	if appErr := ctrl.availabilityService.DeleteOverride(ctx, organizerID, overrideID); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "Date override deleted")
}

func (ctrl *AvailabilityController) GetBufferConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	cfg, appErr := ctrl.availabilityService.GetBufferConfig(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, cfg, "Buffer configuration retrieved")
}

func (ctrl *AvailabilityController) UpdateBufferConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	var req dto.BufferConfigRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	cfg, appErr := ctrl.availabilityService.UpdateBufferConfig(ctx, organizerID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, cfg, "Buffer configuration saved")
}

func (ctrl *AvailabilityController) ListBlockedTimes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	blocked, appErr := ctrl.availabilityService.ListBlockedTimes(ctx, organizerID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, blocked, "Blocked times retrieved")
}

func (ctrl *AvailabilityController) CreateBlockedTime(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	var req dto.BlockedTimeRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	blocked, appErr := ctrl.availabilityService.CreateBlockedTime(ctx, organizerID, &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, blocked, "Blocked time created")
}

func (ctrl *AvailabilityController) DeleteBlockedTime(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	blockedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid blocked time id")
	}

	if appErr := ctrl.availabilityService.DeleteBlockedTime(ctx, organizerID, blockedID); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "Blocked time deleted")
}
