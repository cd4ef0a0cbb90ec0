package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/core"
	"kalanmoney/internal/log"
)

type CreateAccountRequest struct {
	Name           string
	OwnerSubID     string
	OwnerName      string
	OpeningBalance decimal.Decimal
}

type CreateCategoryRequest struct {
	AccountID string
	Name      string
}

// AccountService creates accounts and categories and reads them back.
type AccountService struct {
	deps Deps
}

func NewAccountService(deps Deps) *AccountService {
	return &AccountService{deps: deps.withDefaults()}
}

// CreateAccount opens an account. A non-zero opening balance is recorded as
// the account's first transaction.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*core.FinancialAccount, error) {
	name, err := core.NewAccountName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("account name: %w", err)
	}
	owner, err := core.NewOwner(req.OwnerSubID, req.OwnerName)
	if err != nil {
		return nil, fmt.Errorf("account owner: %w", err)
	}

	account, err := core.NewFinancialAccount(s.deps.IDs, name, owner, core.NewBalance(req.OpeningBalance), s.deps.Clock())
	if err != nil {
		return nil, fmt.Errorf("new account: %w", err)
	}
	if err := s.deps.Commands.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("store account: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentTransaction).InfoContext(ctx, "Account created",
		log.FieldAccountID, account.ID(),
		log.FieldBalance, account.Balance().String())
	return account, nil
}

// CreateCategory adds a zero-balance category under an existing account.
func (s *AccountService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*core.FinancialCategory, error) {
	name, err := core.NewAccountName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("category name: %w", err)
	}

	account, found, err := s.deps.Accounts.GetAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", req.AccountID, err)
	}
	if !found {
		return nil, accountNotFound(req.AccountID)
	}

	category, err := core.NewFinancialCategory(s.deps.IDs, name, account)
	if err != nil {
		return nil, fmt.Errorf("new category: %w", err)
	}
	if err := s.deps.Commands.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("store category: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentTransaction).InfoContext(ctx, "Category created",
		log.FieldAccountID, account.ID(),
		log.FieldCategoryID, category.ID())
	return category, nil
}

// GetAccountSummary returns the balance and the transactions inside filter.
func (s *AccountService) GetAccountSummary(ctx context.Context, accountID string, filter core.TransactionFilter) (core.AccountSummary, error) {
	if err := filter.Validate(); err != nil {
		return core.AccountSummary{}, err
	}
	account, found, err := s.deps.Accounts.GetAccount(ctx, accountID, filter)
	if err != nil {
		return core.AccountSummary{}, fmt.Errorf("load account %s: %w", accountID, err)
	}
	if !found {
		return core.AccountSummary{}, accountNotFound(accountID)
	}
	return core.Summarize(account, filter), nil
}

func (s *AccountService) ListCategories(ctx context.Context, accountID string) ([]*core.FinancialCategory, error) {
	_, found, err := s.deps.Accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", accountID, err)
	}
	if !found {
		return nil, accountNotFound(accountID)
	}
	cats, err := s.deps.Categories.ListCategories(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
