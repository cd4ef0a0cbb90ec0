package core

import "github.com/shopspring/decimal"

// AccountSummary is a compact view of an account over a filter window.
type AccountSummary struct {
	AccountID    string
	Name         string
	Owner        Owner
	Balance      Balance
	Income       decimal.Decimal
	Outcome      decimal.Decimal // sum of debits, always <= 0
	Transactions []Transaction
}

// Summarize totals the account's transactions inside f.
func Summarize(a *FinancialAccount, f TransactionFilter) AccountSummary {
	s := AccountSummary{
		AccountID:    a.ID(),
		Name:         a.Name().String(),
		Owner:        a.Owner(),
		Balance:      a.Balance(),
		Income:       decimal.Zero,
		Outcome:      decimal.Zero,
		Transactions: a.TransactionsIn(f),
	}
	for _, tx := range s.Transactions {
		if tx.IsIncome() {
			s.Income = s.Income.Add(tx.Amount())
		} else {
			s.Outcome = s.Outcome.Add(tx.Amount())
		}
	}
	return s
}
