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
	"schedulr-api/modules/booking/dto"
	"schedulr-api/modules/booking/service"
)

type BookingController struct {
	coreController.BaseController
	bookingService service.BookingService
}

func NewBookingController(s service.BookingService) *BookingController {
	return &BookingController{
		BaseController: coreController.NewBaseController(),
		bookingService: s,
	}
}

func organizerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// Create is the public booking submission.
// POST /api/v1/public/:organizerSlug/:eventTypeSlug/bookings
func (ctrl *BookingController) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	booking, appErr := ctrl.bookingService.CreateBooking(ctx, c.Param("organizerSlug"), c.Param("eventTypeSlug"), &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, booking, "Booking confirmed")
}

// Get serves the invitee manage page.
// GET /api/v1/bookings/manage/:token
func (ctrl *BookingController) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	booking, appErr := ctrl.bookingService.GetByAccessToken(ctx, c.Param("token"))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, booking, "Booking retrieved")
}

// Cancel lets the invitee cancel through the manage link.
// POST /api/v1/bookings/manage/:token/cancel
func (ctrl *BookingController) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	var req dto.CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	booking, appErr := ctrl.bookingService.Cancel(ctx, c.Param("token"), &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, booking, "Booking cancelled")
}

// Reschedule moves the booking to a new slot through the manage link.
// POST /api/v1/bookings/manage/:token/reschedule
func (ctrl *BookingController) Reschedule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	var req dto.RescheduleBookingRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	booking, appErr := ctrl.bookingService.Reschedule(ctx, c.Param("token"), &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, booking, "Booking rescheduled")
}

// List returns the organizer's bookings, newest first.
// GET /api/v1/bookings
func (ctrl *BookingController) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}

	params := coreParams.NewQueryParams(c)
	page, appErr := ctrl.bookingService.ListByOrganizer(ctx, organizerID, &params)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, page, "Bookings retrieved")
}

// CancelByOrganizer cancels from the dashboard.
// POST /api/v1/bookings/:id/cancel
func (ctrl *BookingController) CancelByOrganizer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	var req dto.CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	booking, appErr := ctrl.bookingService.CancelByOrganizer(ctx, organizerID, bookingID, req.Reason)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, booking, "Booking cancelled")
}

// MarkOutcome records completed or no_show on a past booking.
// POST /api/v1/bookings/:id/status
func (ctrl *BookingController) MarkOutcome(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultRequestTimeout)
	defer cancel()

	organizerID, ok := organizerIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Missing authentication")
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	var req dto.BookingOutcomeRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	booking, appErr := ctrl.bookingService.MarkOutcome(ctx, organizerID, bookingID, req.Status)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, booking, "Booking updated")
}
