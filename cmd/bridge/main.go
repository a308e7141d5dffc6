package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rfid-bridge/internal/app"
	"rfid-bridge/internal/config"
	"rfid-bridge/pkg/logger"
)

func main() {
	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadConfig()
	config.MustPrintConfig(cfg)

	log := logger.MustSetupLogger(&logger.Config{
		Level:      cfg.Logger.Level,
		FormatJSON: cfg.Logger.FormatJSON,
		Rotation: logger.Rotation{
			File:       cfg.Logger.Rotation.File,
			MaxSize:    cfg.Logger.Rotation.MaxSize,
			MaxBackups: cfg.Logger.Rotation.MaxBackups,
			MaxAge:     cfg.Logger.Rotation.MaxAge,
		},
	})

	errors := make(chan error)

	application := app.MustNew(cfg, log)

	defer func() {
		close(errors)
	}()

	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Error("Failed to shutdown application", zap.Error(err))
		}

		if err := log.Sync(); err != nil {
			log.Warn("Failed to sync logger", zap.Error(err))
		}

		log.Info("Application has shutdown")
	}()

	go func() { errors <- application.Run(ctx) }()

	select {
	case err := <-errors:
		if err != nil {
			log.Error("Bridge error, shutting down...", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Received stop signal, shutting down...")
	}
}
