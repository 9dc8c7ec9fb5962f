// Package main provides the entry point for the Growloop invitation server
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/growloop/growloop/domain/email"
	"github.com/growloop/growloop/domain/health"
	"github.com/growloop/growloop/domain/invites"
	"github.com/growloop/growloop/internal/config"
	"github.com/growloop/growloop/internal/database"
	"github.com/growloop/growloop/internal/server"
	"github.com/growloop/growloop/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	// Note: Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		server.Module,

		// Domain modules
		health.Module,
		email.Module,
		invites.Module,
	).Run()
}
