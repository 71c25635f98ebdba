package availability

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/cache"
	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	"schedulr-api/core/middleware"
	"schedulr-api/modules/availability/controller"
	"schedulr-api/modules/availability/repository"
	"schedulr-api/modules/availability/router"
	"schedulr-api/modules/availability/service"
	etRepository "schedulr-api/modules/eventtype/repository"
)

// Init wires the availability module and returns its service for modules
// that consume slot computation (booking validation).
func Init(e *echo.Echo, db database.Database, c cache.Cache, m *middleware.Middleware) service.AvailabilityService {
	repo := repository.NewAvailabilityRepository(&db)
	etRepo := etRepository.NewEventTypeRepository(&db)
	svc := service.NewAvailabilityService(repo, etRepo, c)
	ctrl := controller.NewAvailabilityController(svc)
	router.RegisterRoutes(e, ctrl, m)

	logger.Info("AvailabilityModule:Init:Success")
	return svc
}
