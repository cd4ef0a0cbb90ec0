// Package cli holds the start-up steps shared by cmd/kalanmoney and
// cmd/kalanmoney-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"kalanmoney/internal/backend"
	"kalanmoney/internal/config"
	"kalanmoney/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	logger := newLogger(cfg, os.Stdout)
	log.SetDefault(logger)
	return logger
}

func newLogger(cfg *config.Config, out io.Writer) *log.Logger {
	return log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		JSON:      strings.EqualFold(cfg.LogFormat, "json"),
		Output:    out,
	})
}

// LoadAndValidateConfig loads .env and the environment, sets up logging
// and runs validate. It exits the process when validation fails.
func LoadAndValidateConfig(validate func(*config.Config) error) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg)
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitBackend creates the configured storage backend or exits.
func InitBackend(ctx context.Context, logger *log.Logger, bc backend.Config) *backend.BackendResult {
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", bc.Type.String())
		os.Exit(1)
	}
	return result
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
