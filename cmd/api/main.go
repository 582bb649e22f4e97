package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markdave123-py/s3handler/internal/app"
	"github.com/markdave123-py/s3handler/internal/config"
	"github.com/markdave123-py/s3handler/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("startup failed")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- application.Server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := application.Close(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("forced shutdown")
	}
}
