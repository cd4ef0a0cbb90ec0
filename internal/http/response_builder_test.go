package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kalanmoney/internal/core"
	"kalanmoney/internal/repository"
	"kalanmoney/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&services.NotFoundError{Kind: services.KindAccount, ID: "a"}, http.StatusNotFound},
		{fmt.Errorf("load: %w", &services.NotFoundError{Kind: services.KindCategory, ID: "c"}), http.StatusNotFound},
		{services.ErrCategoryAccountMismatch, http.StatusUnprocessableEntity},
		{services.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("account name: %w", core.ErrEmptyAccountName), http.StatusBadRequest},
		{core.ErrInvalidFilter, http.StatusBadRequest},
		{badRequest("x"), http.StatusBadRequest},
		{repository.ErrDuplicateTransaction, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), "read", errors.New("secret dsn"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret") {
		t.Errorf("body leaks the cause: %s", rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
