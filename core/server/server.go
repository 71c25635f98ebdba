package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"schedulr-api/core/cache"
	"schedulr-api/core/config"
	"schedulr-api/core/constants"
	"schedulr-api/core/database"
	"schedulr-api/core/logger"
	"schedulr-api/core/middleware"
	"schedulr-api/core/worker"
	"schedulr-api/modules/availability"
	"schedulr-api/modules/booking"
	"schedulr-api/modules/calendar"
	"schedulr-api/modules/eventtype"
	"schedulr-api/modules/notification"
)

const shutdownTimeout = 10 * time.Second

// Run boots the full API: config, database, redis, worker, all modules,
// then serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Server.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return err
	}

	client := worker.NewClient(cfg.Redis)
	defer client.Close()
	handler := worker.NewHandler()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())

	m := middleware.NewMiddleware(c)
	e.Use(m.RequestID())

	e.GET("/health", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Module wiring. Order matters: booking consumes the availability
	// service and the notification service.
	eventtype.Init(e, db, c, m)
	availSvc := availability.Init(e, db, c, m)
	notifSvc := notification.Init(e, db, client, handler, m)
	booking.Init(e, db, availSvc, notifSvc, m)
	calendar.Init(e, db, cfg, client, handler, availSvc, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run(ctx, cfg, handler)
	}()

	go schedulePeriodicSync(ctx, cfg, client)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Start", "addr", addr)
		serverErr <- e.Start(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server:Run:ShutdownSignal")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
	case err := <-workerErr:
		if err != nil {
			return fmt.Errorf("worker: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Shutdown:Error", "error", err)
		return err
	}

	logger.Info("Server:Run:Stopped")
	return nil
}

// schedulePeriodicSync enqueues a full calendar sweep on the configured
// interval. The task payload is empty, which the calendar handler treats
// as "sync every enabled connection".
func schedulePeriodicSync(ctx context.Context, cfg *config.Config, client *worker.Client) {
	interval := time.Duration(cfg.Worker.SyncIntervalMinutes) * time.Minute
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Enqueue(constants.TaskCalendarSync, nil); err != nil {
				logger.Error("Server:PeriodicSync:EnqueueError", "error", err)
			}
		}
	}
}
