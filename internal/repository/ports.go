package repository

import (
	"context"
	"errors"

	"kalanmoney/internal/core"
)

// ErrDuplicateTransaction is returned by command adapters that are handed a
// transaction id they have already stored.
var ErrDuplicateTransaction = errors.New("transaction id already used")

// Ports consumed by the use cases. Query methods report absence through the
// found flag; err is reserved for storage failures.
type (
	AccountQueries interface {
		GetAccountByID(ctx context.Context, id string) (account *core.FinancialAccount, found bool, err error)

		// GetAccount loads the account with its history restricted to filter.
		GetAccount(ctx context.Context, id string, filter core.TransactionFilter) (account *core.FinancialAccount, found bool, err error)

		// GetAccountByOwner returns the first account owned by ownerSubID.
		GetAccountByOwner(ctx context.Context, ownerSubID string, filter core.TransactionFilter) (account *core.FinancialAccount, found bool, err error)

		GetMonthlyTransactions(ctx context.Context, accountID string, year, month int) ([]core.Transaction, error)
	}

	CategoryQueries interface {
		GetCategoryByID(ctx context.Context, id string) (category *core.FinancialCategory, found bool, err error)
		ListCategories(ctx context.Context, accountID string) ([]*core.FinancialCategory, error)
	}

	// AccountCommands persists account state. AddTransaction must write the
	// transaction and both balances atomically: when it returns nil, a later
	// read of either record reflects the new transaction; when it fails,
	// neither does.
	AccountCommands interface {
		AddTransaction(ctx context.Context, account AddTransactionAccountModel, tx core.Transaction, category AddTransactionCategoryModel) error
		CreateAccount(ctx context.Context, account *core.FinancialAccount) error
		CreateCategory(ctx context.Context, category *core.FinancialCategory) error
	}
)

// AddTransactionAccountModel is the projection of an account that
// AddTransaction needs: the identity and the balance after the transaction.
type AddTransactionAccountModel struct {
	ID      string
	Balance core.Balance
}

// AddTransactionCategoryModel mirrors AddTransactionAccountModel for the category.
type AddTransactionCategoryModel struct {
	ID      string
	Balance core.Balance
}
