package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is one balance-affecting event. A negative amount is an
// outcome (debit), a positive amount an income (credit).
type Transaction struct {
	id        string
	amount    decimal.Decimal
	timeStamp TimeStamp
}

// NewTransaction records a new event with a freshly generated id.
func NewTransaction(gen IDGenerator, amount decimal.Decimal, ts TimeStamp) (Transaction, error) {
	return RehydrateTransaction(gen.NewID(), amount, ts)
}

// RehydrateTransaction reconstructs a stored transaction.
func RehydrateTransaction(id string, amount decimal.Decimal, ts TimeStamp) (Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Transaction{}, ErrEmptyID
	}
	return Transaction{id: id, amount: amount, timeStamp: ts}, nil
}

func (t Transaction) ID() string {
	return t.id
}

func (t Transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t Transaction) TimeStamp() TimeStamp {
	return t.timeStamp
}

func (t Transaction) IsOutcome() bool {
	return t.amount.IsNegative()
}

func (t Transaction) IsIncome() bool {
	return t.amount.IsPositive()
}

func filterTransactions(txs []Transaction, f TransactionFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Contains(tx.TimeStamp()) {
			out = append(out, tx)
		}
	}
	return out
}
