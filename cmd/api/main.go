package main

import (
	"os"

	"eventsapi/config"
	_ "eventsapi/docs"
	"eventsapi/internal/app"
)

// @title Events API
// @version 3.0
// @description CRUD API for events with image uploads.
// @BasePath /api/v3/app
func main() {
	cfg, err := config.Load()
	// Load has applied .env even when it returns an error.
	logger := config.NewLogger()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "err", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}
