package memory

import (
	"context"
	"fmt"
	"sync"

	"kalanmoney/internal/sheets"
)

// Exporter keeps exported rows in memory. It backs the worker when no
// spreadsheet is configured.
type Exporter struct {
	mu   sync.Mutex
	rows []sheets.TransactionRow
	seen map[string]int
}

var _ sheets.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{seen: map[string]int{}}
}

// Export stores the row. A transaction exported twice keeps its first
// reference so redelivered messages do not duplicate rows.
func (e *Exporter) Export(_ context.Context, row sheets.TransactionRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if n, ok := e.seen[row.TransactionID]; ok {
		return fmt.Sprintf("mem:%d", n), nil
	}
	e.rows = append(e.rows, row)
	e.seen[row.TransactionID] = len(e.rows)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

func (e *Exporter) Rows() []sheets.TransactionRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.TransactionRow(nil), e.rows...)
}
