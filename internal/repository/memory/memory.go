package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/core"
	"kalanmoney/internal/repository"
)

type accountRecord struct {
	id        string
	name      core.AccountName
	owner     core.Owner
	balance   core.Balance
	createdAt core.TimeStamp
	txs       []core.Transaction
}

type categoryRecord struct {
	id        string
	name      core.AccountName
	accountID string
	owner     core.Owner
	balance   core.Balance
	txs       []core.Transaction
}

// Store keeps accounts and categories in memory. Every write happens under
// one lock, which makes AddTransaction atomic for readers.
type Store struct {
	mu         sync.Mutex
	accounts   map[string]*accountRecord
	order      []string
	categories map[string]*categoryRecord
	txIDs      map[string]struct{}
}

// Ensure interface conformance
var (
	_ repository.AccountQueries  = (*Store)(nil)
	_ repository.CategoryQueries = (*Store)(nil)
	_ repository.AccountCommands = (*Store)(nil)
)

func New() *Store {
	return &Store{
		accounts:   map[string]*accountRecord{},
		categories: map[string]*categoryRecord{},
		txIDs:      map[string]struct{}{},
	}
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*core.FinancialAccount, bool, error) {
	return s.GetAccount(ctx, id, core.AllTime())
}

func (s *Store) GetAccount(_ context.Context, id string, filter core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.accounts[id]
	if !ok {
		return nil, false, nil
	}
	a, err := rec.toEntity(filter)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (s *Store) GetAccountByOwner(_ context.Context, ownerSubID string, filter core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		rec := s.accounts[id]
		if rec.owner.SubID != ownerSubID {
			continue
		}
		a, err := rec.toEntity(filter)
		if err != nil {
			return nil, false, err
		}
		return a, true, nil
	}
	return nil, false, nil
}

func (s *Store) GetMonthlyTransactions(ctx context.Context, accountID string, year, month int) ([]core.Transaction, error) {
	filter, err := core.MonthFilter(year, month)
	if err != nil {
		return nil, err
	}
	a, found, err := s.GetAccount(ctx, accountID, filter)
	if err != nil || !found {
		return nil, err
	}
	return a.Transactions(), nil
}

func (s *Store) GetCategoryByID(_ context.Context, id string) (*core.FinancialCategory, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.categories[id]
	if !ok {
		return nil, false, nil
	}
	c, err := rec.toEntity()
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *Store) ListCategories(_ context.Context, accountID string) ([]*core.FinancialCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.FinancialCategory
	for _, rec := range s.categories {
		if rec.accountID != accountID {
			continue
		}
		c, err := rec.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	// same order as the SQLite adapter: name, then id
	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := out[i].Name().String(), out[j].Name().String()
		if ni != nj {
			return ni < nj
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// AddTransaction checks both records before touching either.
func (s *Store) AddTransaction(ctx context.Context, account repository.AddTransactionAccountModel, tx core.Transaction, category repository.AddTransactionCategoryModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[account.ID]
	if !ok {
		return fmt.Errorf("account %s not stored", account.ID)
	}
	cat, ok := s.categories[category.ID]
	if !ok {
		return fmt.Errorf("category %s not stored", category.ID)
	}
	if _, dup := s.txIDs[tx.ID()]; dup {
		return fmt.Errorf("add transaction %s: %w", tx.ID(), repository.ErrDuplicateTransaction)
	}

	acc.balance = account.Balance
	acc.txs = append(acc.txs, tx)
	cat.balance = category.Balance
	cat.txs = append(cat.txs, tx)
	s.txIDs[tx.ID()] = struct{}{}

	slog.DebugContext(ctx, "Transaction stored in memory",
		"transaction_id", tx.ID(),
		"account_id", account.ID,
		"category_id", category.ID)
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a *core.FinancialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.ID()]; exists {
		return fmt.Errorf("account %s already exists", a.ID())
	}
	txs := a.Transactions()
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		_, stored := s.txIDs[tx.ID()]
		_, repeated := seen[tx.ID()]
		if stored || repeated {
			return fmt.Errorf("create account %s: transaction %s: %w", a.ID(), tx.ID(), repository.ErrDuplicateTransaction)
		}
		seen[tx.ID()] = struct{}{}
	}
	for id := range seen {
		s.txIDs[id] = struct{}{}
	}
	s.accounts[a.ID()] = &accountRecord{
		id:        a.ID(),
		name:      a.Name(),
		owner:     a.Owner(),
		balance:   a.Balance(),
		createdAt: a.CreatedAt(),
		txs:       txs,
	}
	s.order = append(s.order, a.ID())
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c *core.FinancialCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.categories[c.ID()]; exists {
		return fmt.Errorf("category %s already exists", c.ID())
	}
	if _, ok := s.accounts[c.AccountID()]; !ok {
		return fmt.Errorf("category %s: parent account %s not stored", c.ID(), c.AccountID())
	}
	s.categories[c.ID()] = &categoryRecord{
		id:        c.ID(),
		name:      c.Name(),
		accountID: c.AccountID(),
		owner:     c.Owner(),
		balance:   c.Balance(),
		txs:       c.Transactions(),
	}
	return nil
}

func (r *accountRecord) toEntity(filter core.TransactionFilter) (*core.FinancialAccount, error) {
	var txs []core.Transaction
	for _, tx := range r.txs {
		if filter.Contains(tx.TimeStamp()) {
			txs = append(txs, tx)
		}
	}
	return core.RehydrateFinancialAccount(r.id, r.name, r.owner, r.balance, r.createdAt, txs)
}

func (r *categoryRecord) toEntity() (*core.FinancialCategory, error) {
	return core.RehydrateFinancialCategory(r.id, r.name, r.accountID, r.owner, r.balance, r.txs)
}

// seedFile is the JSON layout accepted by NewFromFile.
type seedFile struct {
	Accounts []struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		OwnerSubID string          `json:"owner_sub_id"`
		OwnerName  string          `json:"owner_name"`
		Balance    decimal.Decimal `json:"balance"`
		Categories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"accounts"`
}

// NewFromFile builds a store seeded from a JSON file. A missing file yields
// an empty store; a malformed one is an error.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	now := core.TimeStampFrom(time.Now())
	for _, sa := range seed.Accounts {
		name, err := core.NewAccountName(sa.Name)
		if err != nil {
			return nil, fmt.Errorf("seed account %q: %w", sa.ID, err)
		}
		owner, err := core.NewOwner(sa.OwnerSubID, sa.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("seed account %q: %w", sa.ID, err)
		}
		a, err := core.RehydrateFinancialAccount(sa.ID, name, owner, core.NewBalance(sa.Balance), now, nil)
		if err != nil {
			return nil, fmt.Errorf("seed account %q: %w", sa.ID, err)
		}
		if err := s.CreateAccount(context.Background(), a); err != nil {
			return nil, err
		}
		for _, sc := range sa.Categories {
			cname, err := core.NewAccountName(sc.Name)
			if err != nil {
				return nil, fmt.Errorf("seed category %q: %w", sc.ID, err)
			}
			c, err := core.RehydrateFinancialCategory(sc.ID, cname, a.ID(), owner, core.ZeroBalance(), nil)
			if err != nil {
				return nil, fmt.Errorf("seed category %q: %w", sc.ID, err)
			}
			if err := s.CreateCategory(context.Background(), c); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
