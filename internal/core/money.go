// Package core holds the account and category model: balances, transactions
// and the value objects they are built from.
//
// This file contains the Balance type and the parsing of user-entered amounts.
// Money is always an exact decimal; float64 never appears in balance arithmetic.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Balance is the running total of an account or category.
type Balance struct {
	amount decimal.Decimal
}

func NewBalance(amount decimal.Decimal) Balance {
	return Balance{amount: amount}
}

// ZeroBalance is the balance of a freshly created category.
func ZeroBalance() Balance {
	return Balance{amount: decimal.Zero}
}

// Apply returns a new balance with amount added. Negative results are allowed.
func (b Balance) Apply(amount decimal.Decimal) Balance {
	return Balance{amount: b.amount.Add(amount)}
}

func (b Balance) Amount() decimal.Decimal {
	return b.amount
}

func (b Balance) Equal(other Balance) bool {
	return b.amount.Equal(other.amount)
}

func (b Balance) IsNegative() bool {
	return b.amount.IsNegative()
}

func (b Balance) String() string {
	return FormatAmount(b.amount)
}

// FormatAmount renders d with at least two decimal places and never drops a
// significant digit: 90 -> "90.00", 99.996 -> "99.996".
func FormatAmount(d decimal.Decimal) string {
	places := -d.Exponent()
	if places < 2 {
		places = 2
	}
	return d.StringFixed(places)
}

// ParseAmount converts user input into a decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// the sign as entered; direction is decided by the use case, not here.
// Returns ErrInvalidAmount for blank or malformed input.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("-10")    -> -10
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
