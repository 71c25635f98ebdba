package router

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/middleware"
	"schedulr-api/modules/notification/controller"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.NotificationController, m *middleware.Middleware) {
	notifications := e.Group("/api/v1/notifications", m.AuthMiddleware())
	notifications.GET("", ctrl.List)
	notifications.GET("/unread-count", ctrl.UnreadCount)
	notifications.POST("/:id/read", ctrl.MarkRead)
}
