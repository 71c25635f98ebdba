package router

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/middleware"
	"schedulr-api/modules/eventtype/controller"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.EventTypeController, m *middleware.Middleware) {
	public := e.Group("/api/v1/public")
	public.GET("/:organizerSlug", ctrl.ListPublic)
	public.GET("/:organizerSlug/:eventTypeSlug", ctrl.GetPublic)

	eventTypes := e.Group("/api/v1/event-types", m.AuthMiddleware())
	eventTypes.GET("", ctrl.List)
	eventTypes.POST("", ctrl.Create)
	eventTypes.GET("/:id", ctrl.Get)
	eventTypes.PUT("/:id", ctrl.Update)
	eventTypes.DELETE("/:id", ctrl.Delete)
}
