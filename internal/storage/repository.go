package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/core"
	"kalanmoney/internal/repository"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the account and category ports on SQLite.
// Balances and amounts are stored as decimal strings, timestamps as Unix
// nanoseconds.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ repository.AccountQueries  = (*SQLiteRepository)(nil)
	_ repository.CategoryQueries = (*SQLiteRepository)(nil)
	_ repository.AccountCommands = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer keeps BEGIN ... COMMIT free of SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) GetAccountByID(ctx context.Context, id string) (*core.FinancialAccount, bool, error) {
	return r.GetAccount(ctx, id, core.AllTime())
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string, filter core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_sub_id, owner_name, balance, created_at FROM accounts WHERE id = ?`, id)
	return r.loadAccount(ctx, row, filter)
}

// GetAccountByOwner returns the oldest account of the owner.
func (r *SQLiteRepository) GetAccountByOwner(ctx context.Context, ownerSubID string, filter core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_sub_id, owner_name, balance, created_at FROM accounts
		 WHERE owner_sub_id = ? ORDER BY created_at, rowid LIMIT 1`, ownerSubID)
	return r.loadAccount(ctx, row, filter)
}

func (r *SQLiteRepository) GetMonthlyTransactions(ctx context.Context, accountID string, year, month int) ([]core.Transaction, error) {
	filter, err := core.MonthFilter(year, month)
	if err != nil {
		return nil, err
	}
	return r.transactions(ctx, "account_id", accountID, filter)
}

func (r *SQLiteRepository) loadAccount(ctx context.Context, row *sql.Row, filter core.TransactionFilter) (*core.FinancialAccount, bool, error) {
	var (
		id, name, ownerSub, ownerName, balance string
		createdAt                              int64
	)
	err := row.Scan(&id, &name, &ownerSub, &ownerName, &balance, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scan account: %w", err)
	}

	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, false, fmt.Errorf("account %s balance %q: %w", id, balance, err)
	}
	txs, err := r.transactions(ctx, "account_id", id, filter)
	if err != nil {
		return nil, false, err
	}
	accountName, err := core.NewAccountName(name)
	if err != nil {
		return nil, false, fmt.Errorf("account %s: %w", id, err)
	}

	a, err := core.RehydrateFinancialAccount(id, accountName,
		core.Owner{SubID: ownerSub, Name: ownerName},
		core.NewBalance(bal), fromNanos(createdAt), txs)
	if err != nil {
		return nil, false, fmt.Errorf("rehydrate account %s: %w", id, err)
	}
	return a, true, nil
}

func (r *SQLiteRepository) GetCategoryByID(ctx context.Context, id string) (*core.FinancialCategory, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, owner_sub_id, owner_name, balance FROM categories WHERE id = ?`, id)
	c, err := r.scanCategory(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, accountID string) ([]*core.FinancialCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM categories WHERE account_id = ? ORDER BY name, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	out := make([]*core.FinancialCategory, 0, len(ids))
	for _, id := range ids {
		c, found, err := r.GetCategoryByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *SQLiteRepository) scanCategory(ctx context.Context, row *sql.Row) (*core.FinancialCategory, error) {
	var id, accountID, name, ownerSub, ownerName, balance string
	if err := row.Scan(&id, &accountID, &name, &ownerSub, &ownerName, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("category %s balance %q: %w", id, balance, err)
	}
	txs, err := r.transactions(ctx, "category_id", id, core.AllTime())
	if err != nil {
		return nil, err
	}
	categoryName, err := core.NewAccountName(name)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	c, err := core.RehydrateFinancialCategory(id, categoryName, accountID,
		core.Owner{SubID: ownerSub, Name: ownerName}, core.NewBalance(bal), txs)
	if err != nil {
		return nil, fmt.Errorf("rehydrate category %s: %w", id, err)
	}
	return c, nil
}

// transactions loads the history of one account or category in insertion
// order. column is a fixed identifier, never user input.
func (r *SQLiteRepository) transactions(ctx context.Context, column, id string, filter core.TransactionFilter) ([]core.Transaction, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, amount, created_at FROM transactions WHERE `)
	b.WriteString(column)
	b.WriteString(` = ?`)
	args := []any{id}
	if !filter.From.IsZero() {
		b.WriteString(` AND created_at >= ?`)
		args = append(args, filter.From.UnixNano())
	}
	if !filter.To.IsZero() {
		b.WriteString(` AND created_at <= ?`)
		args = append(args, filter.To.UnixNano())
	}
	b.WriteString(` ORDER BY created_at, rowid`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			txID, amount string
			createdAt    int64
		)
		if err := rows.Scan(&txID, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", txID, amount, err)
		}
		tx, err := core.RehydrateTransaction(txID, amt, fromNanos(createdAt))
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// AddTransaction writes the transaction and both balances in one SQL
// transaction.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, account repository.AddTransactionAccountModel, tx core.Transaction, category repository.AddTransactionCategoryModel) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	var exists int
	err = sqlTx.QueryRowContext(ctx, `SELECT COUNT(1) FROM transactions WHERE id = ?`, tx.ID()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check transaction id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("add transaction %s: %w", tx.ID(), repository.ErrDuplicateTransaction)
	}

	if err := updateOne(ctx, sqlTx, `UPDATE accounts SET balance = ? WHERE id = ?`, account.Balance.Amount().String(), account.ID); err != nil {
		return fmt.Errorf("update account %s: %w", account.ID, err)
	}
	if err := updateOne(ctx, sqlTx, `UPDATE categories SET balance = ? WHERE id = ?`, category.Balance.Amount().String(), category.ID); err != nil {
		return fmt.Errorf("update category %s: %w", category.ID, err)
	}

	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, category_id, amount, created_at) VALUES (?, ?, ?, ?, ?)`,
		tx.ID(), account.ID, category.ID, tx.Amount().String(), tx.TimeStamp().Time().UnixNano())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", tx.ID(),
		"account_id", account.ID,
		"category_id", category.ID,
		"amount", tx.Amount().String())
	return nil
}

var errNoRow = errors.New("no such row")

func updateOne(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRow
	}
	return nil
}

// CreateAccount stores a new account together with its opening transaction.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a *core.FinancialAccount) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO accounts (id, name, owner_sub_id, owner_name, balance, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID(), a.Name().String(), a.Owner().SubID, a.Owner().Name, a.Balance().Amount().String(), a.CreatedAt().Time().UnixNano())
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	for _, tx := range a.Transactions() {
		_, err = sqlTx.ExecContext(ctx,
			`INSERT INTO transactions (id, account_id, category_id, amount, created_at) VALUES (?, ?, NULL, ?, ?)`,
			tx.ID(), a.ID(), tx.Amount().String(), tx.TimeStamp().Time().UnixNano())
		if err != nil {
			return fmt.Errorf("insert opening transaction: %w", err)
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved to SQLite", "account_id", a.ID())
	return nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.FinancialCategory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, account_id, name, owner_sub_id, owner_name, balance) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID(), c.AccountID(), c.Name().String(), c.Owner().SubID, c.Owner().Name, c.Balance().Amount().String())
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "category_id", c.ID(), "account_id", c.AccountID())
	return nil
}

func fromNanos(n int64) core.TimeStamp {
	return core.TimeStampFrom(time.Unix(0, n))
}
