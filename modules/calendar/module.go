package calendar

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/config"
	"schedulr-api/core/constants"
	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	"schedulr-api/core/middleware"
	"schedulr-api/core/worker"
	availRepository "schedulr-api/modules/availability/repository"
	availService "schedulr-api/modules/availability/service"
	"schedulr-api/modules/calendar/controller"
	"schedulr-api/modules/calendar/repository"
	"schedulr-api/modules/calendar/router"
	"schedulr-api/modules/calendar/service"
)

// Init wires the calendar module. Sync results land in the availability
// module's blocked_times, so it shares that repository and invalidates the
// same slot cache.
func Init(
	e *echo.Echo,
	db database.Database,
	cfg *config.Config,
	client *worker.Client,
	handler *worker.Handler,
	availSvc availService.AvailabilityService,
	m *middleware.Middleware,
) service.CalendarService {
	repo := repository.NewCalendarRepository(&db)
	availRepo := availRepository.NewAvailabilityRepository(&db)
	fetcher := service.NewGoogleFreeBusy(cfg.GoogleAPI)

	svc := service.NewCalendarService(repo, availRepo, availSvc, fetcher, client)
	ctrl := controller.NewCalendarController(svc)
	router.RegisterRoutes(e, ctrl, m)

	if handler != nil {
		handler.HandleFunc(constants.TaskCalendarSync, svc.HandleSyncTask)
	}

	logger.Info("CalendarModule:Init:Success")
	return svc
}
