package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/krswitch/backend/internal/pkg/logger"
	"github.com/krswitch/backend/internal/server"
)

// @title KRSwitch API
// @version 1.0
// @description API for the KRSwitch class barter system

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api/v1
// @schemes http

func main() {
	// Environment overrides may come from a local .env file; absence is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
