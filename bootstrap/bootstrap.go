package bootstrap

import (
	"spending-backend/internal/config"
	"spending-backend/internal/interfaces/router"
	"spending-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for the serverless entry (api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, false)
	app, _, err := router.CreateApp(cfg)
	return app, err
}
