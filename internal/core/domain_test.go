package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return s.prefix + "-" + string(rune('0'+s.n))
}

func TestNewAccountName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"Wallet", "Wallet", nil},
		{"  Savings  ", "Savings", nil},
		{"", "", ErrEmptyAccountName},
		{"   \t ", "", ErrEmptyAccountName},
		{strings.Repeat("x", 101), "", ErrAccountNameTooLong},
	}
	for i, tc := range cases {
		got, err := NewAccountName(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("case %d: expected err %v, got %v", i, tc.err, err)
		}
		if got.String() != tc.want {
			t.Fatalf("case %d: expected %q, got %q", i, tc.want, got.String())
		}
	}
}

func TestNewOwner(t *testing.T) {
	if _, err := NewOwner(" ", "Test"); !errors.Is(err, ErrEmptyOwner) {
		t.Fatalf("expected ErrEmptyOwner, got %v", err)
	}
	o, err := NewOwner("sub-1", " Test ")
	if err != nil || o.SubID != "sub-1" || o.Name != "Test" {
		t.Fatalf("unexpected owner %+v err=%v", o, err)
	}
}

func TestEntityFactories(t *testing.T) {
	e, err := NewEntity(&seqIDs{prefix: "acc"})
	if err != nil || e.ID() != "acc-1" {
		t.Fatalf("unexpected entity %q err=%v", e.ID(), err)
	}
	if _, err := RehydrateEntity("  "); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
	if e, _ := RehydrateEntity("stored"); e.ID() != "stored" {
		t.Fatalf("expected stored id, got %q", e.ID())
	}
}

func TestUUIDGeneratorUnique(t *testing.T) {
	gen := UUIDGenerator{}
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id := gen.NewID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestTransactionFilter(t *testing.T) {
	f, err := NewTransactionFilter(time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	cases := []struct {
		at time.Time
		in bool
	}{
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), true},
		{time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for i, tc := range cases {
		if got := f.Contains(TimeStampFrom(tc.at)); got != tc.in {
			t.Fatalf("case %d: expected %v, got %v", i, tc.in, got)
		}
	}

	if _, err := NewTransactionFilter(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if !AllTime().Contains(Now()) {
		t.Fatalf("AllTime should contain now")
	}
}

func TestMonthFilter(t *testing.T) {
	f, err := MonthFilter(2024, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !f.Contains(TimeStampFrom(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC))) {
		t.Fatalf("leap day should be inside February 2024")
	}
	if f.Contains(TimeStampFrom(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))) {
		t.Fatalf("March 1st should be outside February")
	}
	for _, m := range []int{0, 13} {
		if _, err := MonthFilter(2024, m); !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("month %d: expected ErrInvalidMonth, got %v", m, err)
		}
	}
}

func TestNewFinancialAccountOpeningBalance(t *testing.T) {
	owner, _ := NewOwner("sub-1", "Test")
	now := Now()

	a, err := NewFinancialAccount(&seqIDs{prefix: "id"}, MustAccountName("Wallet"), owner, NewBalance(decimal.RequireFromString("100.00")), now)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.ID() != "id-1" {
		t.Fatalf("expected account id id-1, got %s", a.ID())
	}
	txs := a.Transactions()
	if len(txs) != 1 || txs[0].ID() != "id-2" || !txs[0].Amount().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected a single opening transaction, got %+v", txs)
	}
	if !a.Balance().Equal(NewBalance(decimal.NewFromInt(100))) {
		t.Fatalf("unexpected balance %s", a.Balance())
	}

	empty, err := NewFinancialAccount(&seqIDs{prefix: "id"}, MustAccountName("Empty"), owner, ZeroBalance(), now)
	if err != nil || len(empty.Transactions()) != 0 {
		t.Fatalf("zero opening balance should not create a transaction: %v %v", empty, err)
	}

	if _, err := NewFinancialAccount(&seqIDs{}, MustAccountName("x"), Owner{}, ZeroBalance(), now); !errors.Is(err, ErrEmptyOwner) {
		t.Fatalf("expected ErrEmptyOwner, got %v", err)
	}
}

func TestApplyTransactionKeepsHistoryAndBalanceInStep(t *testing.T) {
	owner, _ := NewOwner("sub-1", "Test")
	a, _ := RehydrateFinancialAccount("acc", MustAccountName("Wallet"), owner, NewBalance(decimal.RequireFromString("100.00")), Now(), nil)
	c, _ := NewFinancialCategory(&seqIDs{prefix: "cat"}, MustAccountName("Food"), a)

	tx, _ := RehydrateTransaction("tx-1", decimal.RequireFromString("-10.0"), Now())
	gotA := a.ApplyTransaction(tx)
	gotC := c.ApplyTransaction(tx)

	if !gotA.Amount().Equal(decimal.RequireFromString("90")) {
		t.Fatalf("account balance = %s, want 90", gotA)
	}
	if !gotC.Amount().Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("category balance = %s, want -10", gotC)
	}
	if got := a.Transactions(); len(got) != 1 || got[0].ID() != "tx-1" {
		t.Fatalf("account history missing transaction: %+v", got)
	}
	if !c.BelongsTo("acc") || c.Owner() != owner {
		t.Fatalf("category should inherit parent account and owner")
	}
}

func TestTransactionsReturnsCopy(t *testing.T) {
	owner, _ := NewOwner("sub-1", "Test")
	tx, _ := RehydrateTransaction("tx-1", decimal.NewFromInt(5), Now())
	a, _ := RehydrateFinancialAccount("acc", MustAccountName("Wallet"), owner, NewBalance(decimal.NewFromInt(5)), Now(), []Transaction{tx})

	txs := a.Transactions()
	txs[0] = Transaction{}
	if a.Transactions()[0].ID() != "tx-1" {
		t.Fatalf("mutating the returned slice must not change the account")
	}
}

func TestRehydrateRejectsInvalid(t *testing.T) {
	owner, _ := NewOwner("sub-1", "Test")
	if _, err := RehydrateFinancialAccount("", MustAccountName("x"), owner, ZeroBalance(), Now(), nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
	if _, err := RehydrateFinancialAccount("a", AccountName{}, owner, ZeroBalance(), Now(), nil); !errors.Is(err, ErrEmptyAccountName) {
		t.Fatalf("expected ErrEmptyAccountName, got %v", err)
	}
	if _, err := RehydrateFinancialCategory("c", MustAccountName("x"), "", owner, ZeroBalance(), nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID for missing parent, got %v", err)
	}
	if _, err := RehydrateTransaction("", decimal.Zero, Now()); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	owner, _ := NewOwner("sub-1", "Test")
	march := TimeStampFrom(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	april := TimeStampFrom(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	t1, _ := RehydrateTransaction("t1", decimal.RequireFromString("200"), march)
	t2, _ := RehydrateTransaction("t2", decimal.RequireFromString("-35.50"), march)
	t3, _ := RehydrateTransaction("t3", decimal.RequireFromString("-4.50"), april)
	a, _ := RehydrateFinancialAccount("acc", MustAccountName("Wallet"), owner, NewBalance(decimal.RequireFromString("160")), march, []Transaction{t1, t2, t3})

	f, _ := MonthFilter(2025, 3)
	s := Summarize(a, f)
	if len(s.Transactions) != 2 {
		t.Fatalf("expected 2 transactions in March, got %d", len(s.Transactions))
	}
	if !s.Income.Equal(decimal.RequireFromString("200")) || !s.Outcome.Equal(decimal.RequireFromString("-35.5")) {
		t.Fatalf("unexpected totals income=%s outcome=%s", s.Income, s.Outcome)
	}
	if s.Balance.String() != "160.00" {
		t.Fatalf("unexpected balance %s", s.Balance)
	}
}
