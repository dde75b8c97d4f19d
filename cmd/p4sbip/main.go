package main

import (
	"context"
	"os"

	"github.com/catherinechia/p4sbip/internal/app"
	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
