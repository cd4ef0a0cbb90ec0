package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kalanmoney/internal/core"
)

const (
	maxBodyBytes = 64 << 10
	dateLayout   = "2006-01-02"
)

// errBadRequest marks malformed input that never reached a use case.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return badRequest("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return badRequest("body must contain a single JSON object")
	}
	return nil
}

// amountInput is a money field that accepts a JSON number or a string in
// either 12.34 or 12,34 form.
type amountInput decimal.Decimal

func (a *amountInput) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return fmt.Errorf("amount %q: %w", raw, err)
	}
	*a = amountInput(d)
	return nil
}

func (a amountInput) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

// parseFilter reads either year and month, or from and to (YYYY-MM-DD,
// both optional). No parameters selects the whole history.
func parseFilter(query url.Values) (core.TransactionFilter, error) {
	yearStr := strings.TrimSpace(query.Get("year"))
	monthStr := strings.TrimSpace(query.Get("month"))
	if yearStr != "" || monthStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return core.TransactionFilter{}, badRequest("invalid year %q", yearStr)
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return core.TransactionFilter{}, badRequest("invalid month %q", monthStr)
		}
		return core.MonthFilter(year, month)
	}

	from, err := parseDate(query.Get("from"))
	if err != nil {
		return core.TransactionFilter{}, err
	}
	to, err := parseDate(query.Get("to"))
	if err != nil {
		return core.TransactionFilter{}, err
	}
	return core.NewTransactionFilter(from, to)
}

// parseDate returns the zero time for an empty string.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
