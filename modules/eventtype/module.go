package eventtype

import (
	"github.com/labstack/echo/v4"

	"schedulr-api/core/cache"
	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	"schedulr-api/core/middleware"
	availRepository "schedulr-api/modules/availability/repository"
	"schedulr-api/modules/eventtype/controller"
	"schedulr-api/modules/eventtype/repository"
	"schedulr-api/modules/eventtype/router"
	"schedulr-api/modules/eventtype/service"
)

func Init(e *echo.Echo, db database.Database, c cache.Cache, m *middleware.Middleware) service.EventTypeService {
	repo := repository.NewEventTypeRepository(&db)
	availRepo := availRepository.NewAvailabilityRepository(&db)
	svc := service.NewEventTypeService(repo, availRepo, c)
	ctrl := controller.NewEventTypeController(svc)
	router.RegisterRoutes(e, ctrl, m)

	logger.Info("EventTypeModule:Init:Success")
	return svc
}
