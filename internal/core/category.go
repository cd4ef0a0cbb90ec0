package core

import "strings"

// FinancialCategory is a child of exactly one account. Its balance is a
// category-scoped running total kept in parallel with the account balance.
type FinancialCategory struct {
	Entity
	name         AccountName
	accountID    string
	owner        Owner
	balance      Balance
	transactions []Transaction
}

// NewFinancialCategory creates an empty category under account.
func NewFinancialCategory(gen IDGenerator, name AccountName, account *FinancialAccount) (*FinancialCategory, error) {
	entity, err := NewEntity(gen)
	if err != nil {
		return nil, err
	}
	return &FinancialCategory{
		Entity:    entity,
		name:      name,
		accountID: account.ID(),
		owner:     account.Owner(),
		balance:   ZeroBalance(),
	}, nil
}

// RehydrateFinancialCategory rebuilds a category read back from storage.
func RehydrateFinancialCategory(id string, name AccountName, accountID string, owner Owner, balance Balance, txs []Transaction) (*FinancialCategory, error) {
	entity, err := RehydrateEntity(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrEmptyID
	}
	if name.String() == "" {
		return nil, ErrEmptyAccountName
	}
	return &FinancialCategory{
		Entity:       entity,
		name:         name,
		accountID:    accountID,
		owner:        owner,
		balance:      balance,
		transactions: append([]Transaction(nil), txs...),
	}, nil
}

func (c *FinancialCategory) Name() AccountName { return c.name }
func (c *FinancialCategory) AccountID() string { return c.accountID }
func (c *FinancialCategory) Owner() Owner      { return c.owner }
func (c *FinancialCategory) Balance() Balance  { return c.balance }

func (c *FinancialCategory) Transactions() []Transaction {
	return append([]Transaction(nil), c.transactions...)
}

func (c *FinancialCategory) TransactionsIn(f TransactionFilter) []Transaction {
	return filterTransactions(c.transactions, f)
}

// ApplyTransaction adds tx to the category balance and history.
func (c *FinancialCategory) ApplyTransaction(tx Transaction) Balance {
	c.balance = c.balance.Apply(tx.Amount())
	c.transactions = append(c.transactions, tx)
	return c.balance
}

// BelongsTo reports whether the category is a child of accountID.
func (c *FinancialCategory) BelongsTo(accountID string) bool {
	return c.accountID == accountID
}
