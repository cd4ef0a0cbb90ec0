package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kalanmoney/internal/core"
	"kalanmoney/internal/log"
	"kalanmoney/internal/repository"
	"kalanmoney/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

type accountResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerSubID string    `json:"owner_sub_id"`
	OwnerName  string    `json:"owner_name,omitempty"`
	Balance    string    `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

type categoryResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
}

type transactionResponse struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	TimeStamp time.Time `json:"timestamp"`
}

type addTransactionResponse struct {
	TransactionID   string `json:"transaction_id"`
	AccountBalance  string `json:"account_balance"`
	CategoryBalance string `json:"category_balance"`
}

type summaryResponse struct {
	AccountID    string                `json:"account_id"`
	Name         string                `json:"name"`
	OwnerSubID   string                `json:"owner_sub_id"`
	Balance      string                `json:"balance"`
	Income       string                `json:"income"`
	Outcome      string                `json:"outcome"`
	Transactions []transactionResponse `json:"transactions"`
}

func newAccountResponse(a *core.FinancialAccount) accountResponse {
	return accountResponse{
		ID:         a.ID(),
		Name:       a.Name().String(),
		OwnerSubID: a.Owner().SubID,
		OwnerName:  a.Owner().Name,
		Balance:    a.Balance().String(),
		CreatedAt:  a.CreatedAt().Time(),
	}
}

func newCategoryResponse(c *core.FinancialCategory) categoryResponse {
	return categoryResponse{
		ID:        c.ID(),
		AccountID: c.AccountID(),
		Name:      c.Name().String(),
		Balance:   c.Balance().String(),
	}
}

func newSummaryResponse(s core.AccountSummary) summaryResponse {
	resp := summaryResponse{
		AccountID:    s.AccountID,
		Name:         s.Name,
		OwnerSubID:   s.Owner.SubID,
		Balance:      s.Balance.String(),
		Income:       core.FormatAmount(s.Income),
		Outcome:      core.FormatAmount(s.Outcome),
		Transactions: make([]transactionResponse, 0, len(s.Transactions)),
	}
	for _, tx := range s.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:        tx.ID(),
			Amount:    core.FormatAmount(tx.Amount()),
			TimeStamp: tx.TimeStamp().Time(),
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps use case and validation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, services.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCategoryAccountMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrDuplicateTransaction):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyAccountName),
		errors.Is(err, core.ErrAccountNameTooLong),
		errors.Is(err, core.ErrEmptyOwner),
		errors.Is(err, core.ErrEmptyID),
		errors.Is(err, core.ErrInvalidFilter),
		errors.Is(err, core.ErrInvalidMonth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides the cause of server errors from the client and logs it.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
