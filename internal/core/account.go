package core

// FinancialAccount is the aggregate holding an owner's balance and the
// ordered history of transactions that produced it.
type FinancialAccount struct {
	Entity
	name         AccountName
	owner        Owner
	balance      Balance
	createdAt    TimeStamp
	transactions []Transaction
}

// NewFinancialAccount opens an account. A non-zero opening balance is recorded
// as the first transaction so that history and balance always agree.
func NewFinancialAccount(gen IDGenerator, name AccountName, owner Owner, opening Balance, now TimeStamp) (*FinancialAccount, error) {
	if owner.SubID == "" {
		return nil, ErrEmptyOwner
	}
	entity, err := NewEntity(gen)
	if err != nil {
		return nil, err
	}
	a := &FinancialAccount{
		Entity:    entity,
		name:      name,
		owner:     owner,
		balance:   ZeroBalance(),
		createdAt: now,
	}
	if !opening.Amount().IsZero() {
		tx, err := NewTransaction(gen, opening.Amount(), now)
		if err != nil {
			return nil, err
		}
		a.ApplyTransaction(tx)
	}
	return a, nil
}

// RehydrateFinancialAccount rebuilds an account read back from storage.
func RehydrateFinancialAccount(id string, name AccountName, owner Owner, balance Balance, createdAt TimeStamp, txs []Transaction) (*FinancialAccount, error) {
	entity, err := RehydrateEntity(id)
	if err != nil {
		return nil, err
	}
	if name.String() == "" {
		return nil, ErrEmptyAccountName
	}
	if owner.SubID == "" {
		return nil, ErrEmptyOwner
	}
	return &FinancialAccount{
		Entity:       entity,
		name:         name,
		owner:        owner,
		balance:      balance,
		createdAt:    createdAt,
		transactions: append([]Transaction(nil), txs...),
	}, nil
}

func (a *FinancialAccount) Name() AccountName { return a.name }
func (a *FinancialAccount) Owner() Owner      { return a.owner }
func (a *FinancialAccount) Balance() Balance  { return a.balance }
func (a *FinancialAccount) CreatedAt() TimeStamp {
	return a.createdAt
}

// Transactions returns a copy of the history, oldest first.
func (a *FinancialAccount) Transactions() []Transaction {
	return append([]Transaction(nil), a.transactions...)
}

// TransactionsIn returns the transactions inside f.
func (a *FinancialAccount) TransactionsIn(f TransactionFilter) []Transaction {
	return filterTransactions(a.transactions, f)
}

// ApplyTransaction adds tx to the balance and appends it to the history.
func (a *FinancialAccount) ApplyTransaction(tx Transaction) Balance {
	a.balance = a.balance.Apply(tx.Amount())
	a.transactions = append(a.transactions, tx)
	return a.balance
}
