package router

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/middleware"
	"schedulr-api/modules/availability/controller"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.AvailabilityController, m *middleware.Middleware) {
	// Public booking page lookup, no auth.
	public := e.Group("/api/v1/public")
	public.GET("/:organizerSlug/:eventTypeSlug/slots", ctrl.GetSlots)

	// Organizer dashboard endpoints.
	availability := e.Group("/api/v1/availability", m.AuthMiddleware())

	availability.GET("/rules", ctrl.ListRules)
	availability.POST("/rules", ctrl.CreateRule)
	availability.PUT("/rules/:id", ctrl.UpdateRule)
	availability.DELETE("/rules/:id", ctrl.DeleteRule)

	availability.GET("/overrides", ctrl.ListOverrides)
	availability.POST("/overrides", ctrl.CreateOverride)
	availability.PUT("/overrides/:id", ctrl.UpdateOverride)
	availability.DELETE("/overrides/:id", ctrl.DeleteOverride)

	availability.GET("/buffer", ctrl.GetBufferConfig)
	availability.PUT("/buffer", ctrl.UpdateBufferConfig)

	availability.GET("/blocked", ctrl.ListBlockedTimes)
	availability.POST("/blocked", ctrl.CreateBlockedTime)
	availability.DELETE("/blocked/:id", ctrl.DeleteBlockedTime)
}
