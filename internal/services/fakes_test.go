package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/core"
	"kalanmoney/internal/repository"
)

type fakeAccounts struct {
	accounts map[string]*core.FinancialAccount
	err      error
	filters  []core.TransactionFilter
}

func (f *fakeAccounts) GetAccountByID(ctx context.Context, id string) (*core.FinancialAccount, bool, error) {
	return f.GetAccount(ctx, id, core.AllTime())
}

func (f *fakeAccounts) GetAccount(_ context.Context, id string, filter core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, false, f.err
	}
	a, ok := f.accounts[id]
	return a, ok, nil
}

func (f *fakeAccounts) GetAccountByOwner(context.Context, string, core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	return nil, false, nil
}

func (f *fakeAccounts) GetMonthlyTransactions(context.Context, string, int, int) ([]core.Transaction, error) {
	return nil, nil
}

type fakeCategories struct {
	categories map[string]*core.FinancialCategory
	err        error
}

func (f *fakeCategories) GetCategoryByID(_ context.Context, id string) (*core.FinancialCategory, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	c, ok := f.categories[id]
	return c, ok, nil
}

func (f *fakeCategories) ListCategories(_ context.Context, accountID string) ([]*core.FinancialCategory, error) {
	var out []*core.FinancialCategory
	for _, c := range f.categories {
		if c.BelongsTo(accountID) {
			out = append(out, c)
		}
	}
	return out, f.err
}

type addCall struct {
	account  repository.AddTransactionAccountModel
	tx       core.Transaction
	category repository.AddTransactionCategoryModel
}

type fakeCommands struct {
	adds       []addCall
	accounts   []*core.FinancialAccount
	categories []*core.FinancialCategory
	err        error
}

func (f *fakeCommands) AddTransaction(_ context.Context, a repository.AddTransactionAccountModel, tx core.Transaction, c repository.AddTransactionCategoryModel) error {
	f.adds = append(f.adds, addCall{account: a, tx: tx, category: c})
	return f.err
}

func (f *fakeCommands) CreateAccount(_ context.Context, a *core.FinancialAccount) error {
	f.accounts = append(f.accounts, a)
	return f.err
}

func (f *fakeCommands) CreateCategory(_ context.Context, c *core.FinancialCategory) error {
	f.categories = append(f.categories, c)
	return f.err
}

type fakePublisher struct {
	msgs []amqp.TransactionAddedMessage
	err  error
}

func (f *fakePublisher) PublishTransactionAdded(_ context.Context, msg amqp.TransactionAddedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type seqIDs struct {
	n int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

var fixedNow = core.TimeStampFrom(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))

type fixture struct {
	accounts   *fakeAccounts
	categories *fakeCategories
	commands   *fakeCommands
	publisher  *fakePublisher
	deps       Deps
}

// newFixture stores account "acc" with balance and category "cat" under it.
func newFixture(balance string) *fixture {
	owner, _ := core.NewOwner("sub-1", "Test")
	a, _ := core.RehydrateFinancialAccount("acc", core.MustAccountName("Wallet"), owner, core.NewBalance(decimal.RequireFromString(balance)), fixedNow, nil)
	c, _ := core.RehydrateFinancialCategory("cat", core.MustAccountName("Food"), "acc", owner, core.ZeroBalance(), nil)

	f := &fixture{
		accounts:   &fakeAccounts{accounts: map[string]*core.FinancialAccount{"acc": a}},
		categories: &fakeCategories{categories: map[string]*core.FinancialCategory{"cat": c}},
		commands:   &fakeCommands{},
		publisher:  &fakePublisher{},
	}
	f.deps = Deps{
		Accounts:   f.accounts,
		Categories: f.categories,
		Commands:   f.commands,
		IDs:        &seqIDs{},
		Clock:      func() core.TimeStamp { return fixedNow },
		Publisher:  f.publisher,
	}
	return f
}
