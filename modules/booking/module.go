package booking

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	"schedulr-api/core/middleware"
	availRepository "schedulr-api/modules/availability/repository"
	availService "schedulr-api/modules/availability/service"
	"schedulr-api/modules/booking/controller"
	"schedulr-api/modules/booking/repository"
	"schedulr-api/modules/booking/router"
	"schedulr-api/modules/booking/service"
	etRepository "schedulr-api/modules/eventtype/repository"
)

// Init wires the booking module. The availability service is shared with the
// availability module so booking validation sees the same slot computation
// that the public endpoint serves.
func Init(
	e *echo.Echo,
	db database.Database,
	availSvc availService.AvailabilityService,
	notifier service.Notifier,
	m *middleware.Middleware,
) service.BookingService {
	repo := repository.NewBookingRepository(&db)
	etRepo := etRepository.NewEventTypeRepository(&db)
	availRepo := availRepository.NewAvailabilityRepository(&db)

	svc := service.NewBookingService(repo, etRepo, availRepo, availSvc, notifier)
	ctrl := controller.NewBookingController(svc)
	router.RegisterRoutes(e, ctrl, m)

	logger.Info("BookingModule:Init:Success")
	return svc
}
