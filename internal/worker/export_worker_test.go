package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/core"
	"kalanmoney/internal/log"
	"kalanmoney/internal/repository/memory"
	"kalanmoney/internal/sheets"
	sheetsmem "kalanmoney/internal/sheets/memory"
)

type countingStore struct {
	*memory.Store
	accountLoads int
}

func (c *countingStore) GetAccountByID(ctx context.Context, id string) (*core.FinancialAccount, bool, error) {
	c.accountLoads++
	return c.Store.GetAccountByID(ctx, id)
}

type failingExporter struct{}

func (failingExporter) Export(context.Context, sheets.TransactionRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	s := memory.New()
	owner, _ := core.NewOwner("sub-1", "Test")
	a, _ := core.RehydrateFinancialAccount("acc", core.MustAccountName("Wallet"), owner, core.ZeroBalance(), core.Now(), nil)
	c, _ := core.RehydrateFinancialCategory("cat", core.MustAccountName("Food"), "acc", owner, core.ZeroBalance(), nil)
	if err := s.CreateAccount(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return &countingStore{Store: s}
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func message(id, account, category string) *amqp.TransactionAddedMessage {
	return &amqp.TransactionAddedMessage{
		TransactionID: id,
		AccountID:     account,
		CategoryID:    category,
		Amount:        decimal.RequireFromString("-12.30"),
		TimeStamp:     time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestExportWorker_ExportsRow(t *testing.T) {
	store := newStore(t)
	exporter := sheetsmem.New()
	w := NewExportWorker(store, store, exporter, DefaultConfig(), quietLogger())

	if err := w.HandleTransactionAdded(context.Background(), message("tx-1", "acc", "cat")); err != nil {
		t.Fatalf("HandleTransactionAdded() error = %v", err)
	}
	rows := exporter.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	if rows[0].AccountName != "Wallet" || rows[0].CategoryName != "Food" || !rows[0].Amount.Equal(decimal.RequireFromString("-12.3")) {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestExportWorker_CachesNames(t *testing.T) {
	store := newStore(t)
	w := NewExportWorker(store, store, sheetsmem.New(), DefaultConfig(), quietLogger())

	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		if err := w.HandleTransactionAdded(context.Background(), message(id, "acc", "cat")); err != nil {
			t.Fatalf("HandleTransactionAdded(%s) error = %v", id, err)
		}
	}
	if store.accountLoads != 1 {
		t.Errorf("account loaded %d times, want 1", store.accountLoads)
	}
	if s := w.NameCache().Stats(); s.Size != 2 || s.Hits != 4 {
		t.Errorf("cache stats = %+v, want size 2 hits 4", s)
	}
}

func TestExportWorker_DropsUnknownRecords(t *testing.T) {
	store := newStore(t)
	exporter := sheetsmem.New()
	w := NewExportWorker(store, store, exporter, DefaultConfig(), quietLogger())

	for _, msg := range []*amqp.TransactionAddedMessage{
		message("tx-1", "gone", "cat"),
		message("tx-2", "acc", "gone"),
	} {
		if err := w.HandleTransactionAdded(context.Background(), msg); err != nil {
			t.Errorf("HandleTransactionAdded() error = %v, want nil so the message is acked", err)
		}
	}
	if len(exporter.Rows()) != 0 {
		t.Error("nothing should be exported for unknown records")
	}
}

func TestExportWorker_ExportFailureRequeues(t *testing.T) {
	store := newStore(t)
	w := NewExportWorker(store, store, failingExporter{}, DefaultConfig(), quietLogger())
	if err := w.HandleTransactionAdded(context.Background(), message("tx-1", "acc", "cat")); err == nil {
		t.Fatal("HandleTransactionAdded() should return the export error")
	}
}
