package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kalanmoney/internal/log"
	"kalanmoney/internal/repository/memory"
	"kalanmoney/internal/services"
)

func newTestServer(t *testing.T, ready func(context.Context) error) *Server {
	t.Helper()
	store := memory.New()
	srv := NewServer(Options{
		Addr: ":0",
		Deps: services.Deps{
			Accounts:   store,
			Categories: store,
			Commands:   store,
		},
		Ready:              ready,
		RateLimitPerMinute: 1000,
		Logger:             log.New(log.Config{Output: &bytes.Buffer{}}),
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

// seedAccount creates an account with a 100.00 opening balance and one category.
func seedAccount(t *testing.T, srv *Server) (accountID, categoryID string) {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/accounts",
		`{"name":"Wallet","owner_sub_id":"sub-1","owner_name":"Test","opening_balance":"100.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create account status=%d body=%s", rr.Code, rr.Body)
	}
	acc := decode[accountResponse](t, rr)

	rr = do(t, srv, http.MethodPost, "/api/accounts/"+acc.ID+"/categories", `{"name":"Food"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status=%d body=%s", rr.Code, rr.Body)
	}
	return acc.ID, decode[categoryResponse](t, rr).ID
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
	}

	down := newTestServer(t, func(context.Context) error { return errors.New("db gone") })
	if rr := do(t, down, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing storage status=%d, want 503", rr.Code)
	}
}

func TestAddOutcomeAndIncome(t *testing.T) {
	srv := newTestServer(t, nil)
	accID, catID := seedAccount(t, srv)

	tests := []struct {
		name        string
		path        string
		amount      string
		wantAccount string
		wantCat     string
	}{
		{"outcome positive amount", "/outcomes", `"10.0"`, "90.00", "-10.00"},
		{"outcome negative amount", "/outcomes", `"-10.0"`, "80.00", "-20.00"},
		{"income", "/incomes", `5`, "85.00", "-15.00"},
		{"zero outcome", "/outcomes", `"0"`, "85.00", "-15.00"},
		{"sub-cent outcome", "/outcomes", `"0.004"`, "84.996", "-15.004"},
		{"comma decimal separator", "/outcomes", `"2,5"`, "82.496", "-17.504"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/accounts/"+accID+tt.path,
				`{"category_id":"`+catID+`","amount":`+tt.amount+`}`)
			if rr.Code != http.StatusCreated {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
			}
			out := decode[addTransactionResponse](t, rr)
			if out.TransactionID == "" {
				t.Error("missing transaction id")
			}
			if out.AccountBalance != tt.wantAccount || out.CategoryBalance != tt.wantCat {
				t.Errorf("balances = %s/%s, want %s/%s", out.AccountBalance, out.CategoryBalance, tt.wantAccount, tt.wantCat)
			}
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/accounts/"+accID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get account status=%d", rr.Code)
	}
	summary := decode[summaryResponse](t, rr)
	if summary.Balance != "82.496" || len(summary.Transactions) != 7 {
		t.Errorf("summary balance=%s txs=%d, want 82.496 and 7", summary.Balance, len(summary.Transactions))
	}
	if summary.Outcome != "-22.504" || summary.Income != "105.00" {
		t.Errorf("summary income=%s outcome=%s", summary.Income, summary.Outcome)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t, nil)
	accID, catID := seedAccount(t, srv)
	_, otherCat := seedAccount(t, srv)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown account", http.MethodPost, "/api/accounts/nope/outcomes", `{"category_id":"` + catID + `","amount":"1"}`, http.StatusNotFound},
		{"unknown category", http.MethodPost, "/api/accounts/" + accID + "/outcomes", `{"category_id":"nope","amount":"1"}`, http.StatusNotFound},
		{"foreign category", http.MethodPost, "/api/accounts/" + accID + "/outcomes", `{"category_id":"` + otherCat + `","amount":"1"}`, http.StatusUnprocessableEntity},
		{"zero amount on unknown account", http.MethodPost, "/api/accounts/nope/outcomes", `{"category_id":"` + catID + `","amount":"0"}`, http.StatusNotFound},
		{"malformed amount", http.MethodPost, "/api/accounts/" + accID + "/outcomes", `{"category_id":"` + catID + `","amount":"abc"}`, http.StatusBadRequest},
		{"two decimal separators", http.MethodPost, "/api/accounts/" + accID + "/outcomes", `{"category_id":"` + catID + `","amount":"1,2.3"}`, http.StatusBadRequest},
		{"malformed opening balance", http.MethodPost, "/api/accounts", `{"name":"Wallet","owner_sub_id":"s","opening_balance":"ten"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/accounts/" + accID + "/incomes", `{"category":"x"}`, http.StatusBadRequest},
		{"blank account name", http.MethodPost, "/api/accounts", `{"name":"  ","owner_sub_id":"s"}`, http.StatusBadRequest},
		{"missing owner", http.MethodPost, "/api/accounts", `{"name":"Wallet"}`, http.StatusBadRequest},
		{"category on unknown account", http.MethodPost, "/api/accounts/nope/categories", `{"name":"Food"}`, http.StatusNotFound},
		{"summary of unknown account", http.MethodGet, "/api/accounts/nope", "", http.StatusNotFound},
		{"inverted filter", http.MethodGet, "/api/accounts/" + accID + "?from=2025-02-01&to=2025-01-01", "", http.StatusBadRequest},
		{"invalid month", http.MethodGet, "/api/accounts/" + accID + "?year=2025&month=13", "", http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "/api/accounts/" + accID, "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status=%d, want %d (body=%s)", rr.Code, tt.want, rr.Body)
			}
		})
	}

	// failed writes leave the balance untouched
	summary := decode[summaryResponse](t, do(t, srv, http.MethodGet, "/api/accounts/"+accID, ""))
	if summary.Balance != "100.00" {
		t.Errorf("balance after rejected requests = %s, want 100.00", summary.Balance)
	}
}

func TestListCategories(t *testing.T) {
	srv := newTestServer(t, nil)
	accID, _ := seedAccount(t, srv)
	do(t, srv, http.MethodPost, "/api/accounts/"+accID+"/categories", `{"name":"Bills"}`)

	rr := do(t, srv, http.MethodGet, "/api/accounts/"+accID+"/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	cats := decode[[]categoryResponse](t, rr)
	if len(cats) != 2 || cats[0].Name != "Bills" || cats[1].Name != "Food" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	store := memory.New()
	srv := NewServer(Options{
		Deps:               services.Deps{Accounts: store, Categories: store, Commands: store},
		RateLimitPerMinute: 1,
		Logger:             log.New(log.Config{Output: &bytes.Buffer{}}),
	})
	defer srv.Shutdown(context.Background())

	do(t, srv, http.MethodGet, "/api/accounts/a", "")
	if rr := do(t, srv, http.MethodGet, "/api/accounts/a", ""); rr.Code != http.StatusTooManyRequests {
		t.Errorf("second API call status=%d, want 429", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Errorf("healthz status=%d, want 200", rr.Code)
	}
}
