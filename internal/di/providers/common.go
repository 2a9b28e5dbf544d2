// Package providers contains dependency injection providers.
package providers

import (
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"libraryadmin/internal/config"
	"libraryadmin/internal/logger"
)

const shutdownTimeout = 30 * time.Second

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	config.LoadEnvFiles()
	return config.Load()
}

// ProvideLogger provides the structured logger and installs it as the slog default.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(log.Logger)

	log.Info("Starting library admin server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store_driver", cfg.Store.Driver,
	)

	return log, nil
}
