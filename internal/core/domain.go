package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxAccountNameLength = 100

type (
	// Owner identifies the person who owns an account: the subject id issued
	// by the identity provider plus a display name.
	Owner struct {
		SubID string
		Name  string
	}

	// AccountName is a validated, non-blank display name.
	AccountName struct {
		value string
	}

	// TimeStamp is a point in time, always held in UTC.
	TimeStamp struct {
		t time.Time
	}

	// TransactionFilter selects transactions between two dates, both inclusive.
	TransactionFilter struct {
		From time.Time
		To   time.Time
	}
)

var (
	ErrEmptyID            = errors.New("empty id")
	ErrEmptyOwner         = errors.New("empty owner subject id")
	ErrEmptyAccountName   = errors.New("empty account name")
	ErrAccountNameTooLong = errors.New("account name too long (max 100 characters)")
	ErrInvalidFilter      = errors.New("invalid transaction filter: from is after to")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
)

func NewOwner(subID, name string) (Owner, error) {
	subID = strings.TrimSpace(subID)
	if subID == "" {
		return Owner{}, ErrEmptyOwner
	}
	return Owner{SubID: subID, Name: strings.TrimSpace(name)}, nil
}

// NewAccountName trims s and rejects blank or oversized names.
func NewAccountName(s string) (AccountName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AccountName{}, ErrEmptyAccountName
	}
	if utf8.RuneCountInString(s) > maxAccountNameLength {
		return AccountName{}, ErrAccountNameTooLong
	}
	return AccountName{value: s}, nil
}

// MustAccountName is NewAccountName for literals known to be valid.
func MustAccountName(s string) AccountName {
	n, err := NewAccountName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n AccountName) String() string {
	return n.value
}

// Now captures the current wall-clock time.
func Now() TimeStamp {
	return TimeStamp{t: time.Now().UTC()}
}

// TimeStampFrom wraps an existing time, e.g. one read back from storage.
func TimeStampFrom(t time.Time) TimeStamp {
	return TimeStamp{t: t.UTC()}
}

func (ts TimeStamp) Time() time.Time {
	return ts.t
}

func (ts TimeStamp) Unix() int64 {
	return ts.t.Unix()
}

func (ts TimeStamp) IsZero() bool {
	return ts.t.IsZero()
}

func (ts TimeStamp) Before(other TimeStamp) bool {
	return ts.t.Before(other.t)
}

func (ts TimeStamp) String() string {
	return ts.t.Format(time.RFC3339)
}

// NewTransactionFilter builds a filter covering the whole days from and to.
func NewTransactionFilter(from, to time.Time) (TransactionFilter, error) {
	f := TransactionFilter{From: startOfDay(from), To: endOfDay(to)}
	if err := f.Validate(); err != nil {
		return TransactionFilter{}, err
	}
	return f, nil
}

// MonthFilter covers every day of the given month.
func MonthFilter(year, month int) (TransactionFilter, error) {
	if month < 1 || month > 12 {
		return TransactionFilter{}, ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return NewTransactionFilter(first, last)
}

// AllTime matches every transaction.
func AllTime() TransactionFilter {
	return TransactionFilter{}
}

func (f TransactionFilter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return ErrInvalidFilter
	}
	return nil
}

// Contains reports whether ts falls inside the filter. A zero bound is open.
func (f TransactionFilter) Contains(ts TimeStamp) bool {
	t := ts.Time()
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}
