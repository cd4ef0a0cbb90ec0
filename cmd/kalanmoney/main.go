package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"kalanmoney/internal/backend"
	"kalanmoney/internal/cli"
	"kalanmoney/internal/config"
	apphttp "kalanmoney/internal/http"
	"kalanmoney/internal/log"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).Validate)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res := cli.InitBackend(ctx, logger, bc)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Deps:               res.Deps(),
		Ready:              res.Ready,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting kalanmoney server",
			"port", cfg.Port,
			"backend", bc.Type.String(),
			"events", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			cancel()
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
