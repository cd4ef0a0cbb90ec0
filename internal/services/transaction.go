package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/core"
	"kalanmoney/internal/log"
	"kalanmoney/internal/repository"
)

// AddTransactionRequest identifies the account and category to charge. The
// sign of Amount is ignored: each use case decides the direction.
type AddTransactionRequest struct {
	AccountID  string
	CategoryID string
	Amount     decimal.Decimal
}

// AddTransactionOutput is only meaningful when the call succeeded.
type AddTransactionOutput struct {
	TransactionID   string
	AccountBalance  decimal.Decimal
	CategoryBalance decimal.Decimal
}

// AddOutcomeTransaction records money leaving an account through one of its
// categories.
type AddOutcomeTransaction struct {
	applier transactionApplier
}

func NewAddOutcomeTransaction(deps Deps) *AddOutcomeTransaction {
	return &AddOutcomeTransaction{applier: transactionApplier{deps: deps.withDefaults()}}
}

// Execute debits abs(req.Amount) from the account and the category.
func (uc *AddOutcomeTransaction) Execute(ctx context.Context, req AddTransactionRequest) (AddTransactionOutput, error) {
	return uc.applier.apply(ctx, req, req.Amount.Abs().Neg())
}

// AddIncomeTransaction records money entering an account.
type AddIncomeTransaction struct {
	applier transactionApplier
}

func NewAddIncomeTransaction(deps Deps) *AddIncomeTransaction {
	return &AddIncomeTransaction{applier: transactionApplier{deps: deps.withDefaults()}}
}

// Execute credits abs(req.Amount) to the account and the category.
func (uc *AddIncomeTransaction) Execute(ctx context.Context, req AddTransactionRequest) (AddTransactionOutput, error) {
	return uc.applier.apply(ctx, req, req.Amount.Abs())
}

type transactionApplier struct {
	deps Deps
}

func (a transactionApplier) apply(ctx context.Context, req AddTransactionRequest, signed decimal.Decimal) (AddTransactionOutput, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentTransaction)

	account, found, err := a.deps.Accounts.GetAccountByID(ctx, req.AccountID)
	if err != nil {
		return AddTransactionOutput{}, fmt.Errorf("load account %s: %w", req.AccountID, err)
	}
	if !found {
		return AddTransactionOutput{}, accountNotFound(req.AccountID)
	}

	category, found, err := a.deps.Categories.GetCategoryByID(ctx, req.CategoryID)
	if err != nil {
		return AddTransactionOutput{}, fmt.Errorf("load category %s: %w", req.CategoryID, err)
	}
	if !found {
		return AddTransactionOutput{}, categoryNotFound(req.CategoryID)
	}
	if !category.BelongsTo(account.ID()) {
		return AddTransactionOutput{}, fmt.Errorf("category %s, account %s: %w", category.ID(), account.ID(), ErrCategoryAccountMismatch)
	}

	tx, err := core.NewTransaction(a.deps.IDs, signed, a.deps.Clock())
	if err != nil {
		return AddTransactionOutput{}, fmt.Errorf("new transaction: %w", err)
	}

	accountBalance := account.Balance().Apply(tx.Amount())
	categoryBalance := category.Balance().Apply(tx.Amount())

	err = a.deps.Commands.AddTransaction(ctx,
		repository.AddTransactionAccountModel{ID: account.ID(), Balance: accountBalance},
		tx,
		repository.AddTransactionCategoryModel{ID: category.ID(), Balance: categoryBalance},
	)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to store transaction",
			log.NewFields().WithTransaction(tx.ID(), account.ID(), category.ID(), tx.Amount()).WithError(err).ToSlice()...)
		return AddTransactionOutput{}, fmt.Errorf("add transaction: %w", err)
	}

	logger.InfoContext(ctx, "Transaction added",
		log.NewFields().
			WithTransaction(tx.ID(), account.ID(), category.ID(), tx.Amount()).
			WithBalance(accountBalance.String()).
			ToSlice()...)

	a.publish(ctx, logger, amqp.TransactionAddedMessage{
		TransactionID: tx.ID(),
		AccountID:     account.ID(),
		CategoryID:    category.ID(),
		Amount:        tx.Amount(),
		TimeStamp:     tx.TimeStamp().Time(),
	})

	return AddTransactionOutput{
		TransactionID:   tx.ID(),
		AccountBalance:  accountBalance.Amount(),
		CategoryBalance: categoryBalance.Amount(),
	}, nil
}

// publish never fails the caller: the transaction is already stored.
func (a transactionApplier) publish(ctx context.Context, logger *log.Logger, msg amqp.TransactionAddedMessage) {
	if a.deps.Publisher == nil {
		logger.WarnContext(ctx, "No event publisher configured, skipping transaction event",
			log.FieldTransactionID, msg.TransactionID)
		return
	}
	if err := a.deps.Publisher.PublishTransactionAdded(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldTransactionID, msg.TransactionID,
			log.FieldError, err)
	}
}
