package router

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/middleware"
	"schedulr-api/modules/booking/controller"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.BookingController, m *middleware.Middleware) {
	// Invitee-facing endpoints, no auth; the manage routes are guarded by
	// the unguessable access token instead.
	public := e.Group("/api/v1/public")
	public.POST("/:organizerSlug/:eventTypeSlug/bookings", ctrl.Create)

	manage := e.Group("/api/v1/bookings/manage")
	manage.GET("/:token", ctrl.Get)
	manage.POST("/:token/cancel", ctrl.Cancel)
	manage.POST("/:token/reschedule", ctrl.Reschedule)

	// Organizer dashboard.
	bookings := e.Group("/api/v1/bookings", m.AuthMiddleware())
	bookings.GET("", ctrl.List)
	bookings.POST("/:id/cancel", ctrl.CancelByOrganizer)
	bookings.POST("/:id/status", ctrl.MarkOutcome)
}
