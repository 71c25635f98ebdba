package notification

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/constants"
	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	"schedulr-api/core/middleware"
	"schedulr-api/core/worker"
	"schedulr-api/modules/notification/controller"
	"schedulr-api/modules/notification/repository"
	"schedulr-api/modules/notification/router"
	"schedulr-api/modules/notification/service"
)

// Init wires the notification module. The returned service doubles as the
// booking module's Notifier. Reminder tasks are registered on the shared
// worker handler when one is provided.
func Init(
	e *echo.Echo,
	db database.Database,
	client *worker.Client,
	handler *worker.Handler,
	m *middleware.Middleware,
) service.NotificationService {
	repo := repository.NewNotificationRepository(&db)
	svc := service.NewNotificationService(repo, client)
	ctrl := controller.NewNotificationController(svc)
	router.RegisterRoutes(e, ctrl, m)

	if handler != nil {
		handler.HandleFunc(constants.TaskBookingReminder, svc.HandleReminderDue)
	}

	logger.Info("NotificationModule:Init:Success")
	return svc
}
