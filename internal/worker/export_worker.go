package worker

import (
	"context"
	"fmt"
	"time"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/cache"
	"kalanmoney/internal/log"
	"kalanmoney/internal/repository"
	"kalanmoney/internal/sheets"
)

// ExportWorker turns TransactionAdded messages into spreadsheet rows.
// Account and category names are looked up once and cached.
type ExportWorker struct {
	accounts   repository.AccountQueries
	categories repository.CategoryQueries
	exporter   sheets.TransactionExporter
	names      *cache.LRUCache[string]
	logger     *log.Logger
}

type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

func DefaultConfig() Config {
	return Config{CacheSize: 256, CacheTTL: 10 * time.Minute}
}

func NewExportWorker(accounts repository.AccountQueries, categories repository.CategoryQueries, exporter sheets.TransactionExporter, cfg Config, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		accounts:   accounts,
		categories: categories,
		exporter:   exporter,
		names:      cache.NewLRUCache[string](cfg.CacheSize, cfg.CacheTTL),
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// NameCache exposes the lookup cache so a cache.Manager can expire it.
func (w *ExportWorker) NameCache() *cache.LRUCache[string] {
	return w.names
}

// HandleTransactionAdded exports one transaction. Returning an error
// requeues the message, so records that no longer exist are logged and
// acknowledged instead.
func (w *ExportWorker) HandleTransactionAdded(ctx context.Context, msg *amqp.TransactionAddedMessage) error {
	fields := log.NewFields().WithTransaction(msg.TransactionID, msg.AccountID, msg.CategoryID, msg.Amount)

	accountName, found, err := w.accountName(ctx, msg.AccountID)
	if err != nil {
		return err
	}
	if !found {
		w.logger.WarnContext(ctx, "Account not found, dropping transaction export", fields.ToSlice()...)
		return nil
	}

	categoryName, found, err := w.categoryName(ctx, msg.CategoryID)
	if err != nil {
		return err
	}
	if !found {
		w.logger.WarnContext(ctx, "Category not found, dropping transaction export", fields.ToSlice()...)
		return nil
	}

	ref, err := w.exporter.Export(ctx, sheets.TransactionRow{
		TransactionID: msg.TransactionID,
		AccountID:     msg.AccountID,
		AccountName:   accountName,
		CategoryID:    msg.CategoryID,
		CategoryName:  categoryName,
		Amount:        msg.Amount,
		TimeStamp:     msg.TimeStamp,
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "Transaction export failed", fields.WithError(err).ToSlice()...)
		return fmt.Errorf("export transaction %s: %w", msg.TransactionID, err)
	}

	w.logger.InfoContext(ctx, "Transaction exported", append(fields.ToSlice(), log.FieldExportRef, ref)...)
	return nil
}

func (w *ExportWorker) accountName(ctx context.Context, id string) (string, bool, error) {
	key := "account:" + id
	if name, ok := w.names.Get(key); ok {
		return name, true, nil
	}
	a, found, err := w.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("load account %s: %w", id, err)
	}
	if !found {
		return "", false, nil
	}
	name := a.Name().String()
	w.names.Set(key, name)
	return name, true, nil
}

func (w *ExportWorker) categoryName(ctx context.Context, id string) (string, bool, error) {
	key := "category:" + id
	if name, ok := w.names.Get(key); ok {
		return name, true, nil
	}
	c, found, err := w.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("load category %s: %w", id, err)
	}
	if !found {
		return "", false, nil
	}
	name := c.Name().String()
	w.names.Set(key, name)
	return name, true, nil
}
