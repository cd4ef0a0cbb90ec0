package services

import (
	"errors"
	"fmt"

	"kalanmoney/internal/core"
)

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryAccountMismatch = errors.New("category does not belong to account")
	ErrInvalidAmount           = core.ErrInvalidAmount
)

const (
	KindAccount  = "account"
	KindCategory = "category"
)

// NotFoundError names the missing record. It unwraps to ErrAccountNotFound
// or ErrCategoryNotFound depending on Kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case KindAccount:
		return ErrAccountNotFound
	case KindCategory:
		return ErrCategoryNotFound
	default:
		return nil
	}
}

func accountNotFound(id string) error {
	return &NotFoundError{Kind: KindAccount, ID: id}
}

func categoryNotFound(id string) error {
	return &NotFoundError{Kind: KindCategory, ID: id}
}
