// Package providers contains dependency injection providers for the love letters server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/loveletters/loveletters-server/internal/config"
	"github.com/loveletters/loveletters-server/internal/logger"
)

// ConfigProvider returns a provider that loads configuration from args
// (without the program name), the environment and the .env file.
func ConfigProvider(args []string) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.Load(args)
	}
}

// LoggerHandle wraps the logger so the DI container closes its file sink.
type LoggerHandle struct {
	*logger.Logger
}

// Shutdown implements do.Shutdownable.
func (h *LoggerHandle) Shutdown() error {
	return h.Close()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*LoggerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		File: logger.FileConfig{
			Path:       cfg.Logger.File,
			MaxSizeMB:  cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAgeDays: cfg.Logger.MaxAgeDays,
		},
	})

	log.Info("Starting love letters server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database", cfg.Database.Path,
		"search_enabled", cfg.Search.Enabled,
	)

	return &LoggerHandle{Logger: log}, nil
}
