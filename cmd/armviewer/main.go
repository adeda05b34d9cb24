// Package main is the entry point of the arm viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/armviewer/internal/app"
	"github.com/Faultbox/armviewer/internal/config"
	"github.com/Faultbox/armviewer/internal/logger"
	"github.com/Faultbox/armviewer/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Arm Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		switch {
		case errors.Is(err, viewer.ErrMount):
			logger.Error("no window to draw on", zap.Error(err))
		case errors.Is(err, viewer.ErrAssetLoad):
			logger.Error("model could not be loaded", zap.String("path", cfg.Model.Path), zap.Error(err))
		case errors.Is(err, viewer.ErrRenderContext):
			logger.Error("OpenGL 4.1 core context unavailable", zap.Error(err))
		default:
			logger.Error("failed to start viewer", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		a.Close()
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
