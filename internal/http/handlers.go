package http

import (
	"context"
	"net/http"
	"time"

	"kalanmoney/internal/core"
	"kalanmoney/internal/log"
	"kalanmoney/internal/services"
)

type createAccountRequest struct {
	Name           string          `json:"name"`
	OwnerSubID     string          `json:"owner_sub_id"`
	OwnerName      string          `json:"owner_name"`
	OpeningBalance amountInput `json:"opening_balance"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type addTransactionRequest struct {
	CategoryID string      `json:"category_id"`
	Amount     amountInput `json:"amount"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{}

	if err := s.ready(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["storage"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	limits := s.rateLimiter.GetMetrics()
	checks["rate_limiter"] = map[string]any{
		"active_clients": limits.ClientCount,
		"rejected":       limits.TotalHits,
	}
	requests := s.tracer.GetMetrics()
	checks["requests"] = map[string]any{
		"total":         requests.TotalRequests,
		"server_errors": requests.ServerErrors,
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	account, err := s.accounts.CreateAccount(r.Context(), services.CreateAccountRequest{
		Name:           req.Name,
		OwnerSubID:     req.OwnerSubID,
		OwnerName:      req.OwnerName,
		OpeningBalance: req.OpeningBalance.Decimal(),
	})
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/accounts/"+account.ID())
	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	summary, err := s.accounts.GetAccountSummary(r.Context(), r.PathValue("id"), filter)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	category, err := s.accounts.CreateCategory(r.Context(), services.CreateCategoryRequest{
		AccountID: r.PathValue("id"),
		Name:      req.Name,
	})
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(category))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.accounts.ListCategories(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, newCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddOutcome(w http.ResponseWriter, r *http.Request) {
	s.handleAddTransaction(w, r, s.outcomes.Execute)
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	s.handleAddTransaction(w, r, s.incomes.Execute)
}

type executeFunc func(ctx context.Context, req services.AddTransactionRequest) (services.AddTransactionOutput, error)

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request, execute executeFunc) {
	var req addTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpApply, err)
		return
	}

	out, err := execute(r.Context(), services.AddTransactionRequest{
		AccountID:  r.PathValue("id"),
		CategoryID: req.CategoryID,
		Amount:     req.Amount.Decimal(),
	})
	if err != nil {
		writeError(w, r, log.OpApply, err)
		return
	}
	writeJSON(w, http.StatusCreated, addTransactionResponse{
		TransactionID:   out.TransactionID,
		AccountBalance:  core.FormatAmount(out.AccountBalance),
		CategoryBalance: core.FormatAmount(out.CategoryBalance),
	})
}
