package sheets

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRow is one committed transaction flattened for a spreadsheet.
type TransactionRow struct {
	TransactionID string
	AccountID     string
	AccountName   string
	CategoryID    string
	CategoryName  string
	Amount        decimal.Decimal
	TimeStamp     time.Time
}

var ErrIncompleteRow = errors.New("transaction row is missing identifiers")

func (r TransactionRow) Validate() error {
	if r.TransactionID == "" || r.AccountID == "" || r.CategoryID == "" {
		return ErrIncompleteRow
	}
	return nil
}

// TransactionExporter writes rows to an outbound destination and returns a
// reference to where the row landed.
type TransactionExporter interface {
	Export(ctx context.Context, row TransactionRow) (ref string, err error)
}
