package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/backend"
	"kalanmoney/internal/cache"
	"kalanmoney/internal/cli"
	"kalanmoney/internal/config"
	"kalanmoney/internal/log"
	"kalanmoney/internal/sheets"
	gsheet "kalanmoney/internal/sheets/google"
	memsheet "kalanmoney/internal/sheets/memory"
	"kalanmoney/internal/worker"
)

const cacheCleanupInterval = time.Minute

func main() {
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting kalanmoney-worker")

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// The worker only reads; it never publishes.
	bc.AMQPURL = ""
	res := cli.InitBackend(ctx, logger, bc)
	defer res.Cleanup()

	exporter, err := newExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize exporter", log.FieldError, err)
		os.Exit(1)
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer consumer.Close()

	exportWorker := worker.NewExportWorker(res.Accounts, res.Categories, exporter, worker.Config{
		CacheSize: cfg.ExportCacheSize,
		CacheTTL:  cfg.ExportCacheTTL,
	}, logger)
	caches := cache.NewManager(exportWorker.NameCache())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeTransactionAdded(gctx, exportWorker.HandleTransactionAdded)
	})
	g.Go(func() error {
		return caches.Run(gctx, cacheCleanupInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// newExporter uses Google Sheets when a spreadsheet is configured and an
// in-memory exporter otherwise.
func newExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TransactionExporter, error) {
	if !cfg.SheetsEnabled() {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to memory only")
		return memsheet.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
