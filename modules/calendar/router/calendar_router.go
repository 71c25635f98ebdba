package router

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/middleware"
	"schedulr-api/modules/calendar/controller"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.CalendarController, m *middleware.Middleware) {
	calendar := e.Group("/api/v1/calendar", m.AuthMiddleware())
	calendar.GET("/connections", ctrl.List)
	calendar.POST("/connections", ctrl.Connect)
	calendar.DELETE("/connections/:id", ctrl.Disconnect)
	calendar.POST("/sync", ctrl.Sync)
}
