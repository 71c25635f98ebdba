package main

import (
	"schedulr-api/core/logger"
	"schedulr-api/core/server"
)

// @title Schedulr API
// @version 1.0
// @description Scheduling backend: organizer availability, event types, public booking.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
