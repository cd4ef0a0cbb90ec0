package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"kalanmoney/internal/core"
	ports "kalanmoney/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends transaction rows to a yearly sheet such as
// "2025 Transactions" in one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var _ ports.TransactionExporter = (*Client)(nil)

var errMissingSpreadsheetID = errors.New("missing GOOGLE_SPREADSHEET_ID")

// Options configures the Sheets client. Credentials come from
// ServiceAccountJSON, then ServiceAccountFile, then
// GOOGLE_APPLICATION_CREDENTIALS.
type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errMissingSpreadsheetID
	}
	raw, err := credentialsJSON(opts)
	if err != nil {
		return nil, err
	}
	creds, err := goauth.CredentialsFromJSON(ctx, raw, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	// Token requests and API calls share the pooled transport.
	pooled := newHTTPClientWithPooling()
	authClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, pooled), creds.TokenSource)
	authClient.Timeout = pooled.Timeout

	return newClient(ctx, opts, goption.WithHTTPClient(authClient))
}

func newClient(ctx context.Context, opts Options, clientOpts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errMissingSpreadsheetID
	}
	sheetBase := strings.TrimSpace(opts.SheetName)
	if sheetBase == "" {
		sheetBase = "Transactions"
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "sheet", sheetBase)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: sheetBase}, nil
}

func credentialsJSON(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.ServiceAccountJSON)
	file := strings.TrimSpace(opts.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between
// exports.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// Export appends the row below the last filled row of the sheet for the
// transaction's year and returns the updated A1 range.
func (c *Client) Export(ctx context.Context, row ports.TransactionRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, row.TimeStamp.Year())
	rng := fmt.Sprintf("%s!A:G", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(row)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Transaction exported to sheet",
		"transaction_id", row.TransactionID,
		"export_ref", ref)
	return ref, nil
}

// rowValues orders the columns as Date, Account, Category, Amount,
// Transaction ID, Account ID, Category ID.
func rowValues(row ports.TransactionRow) []any {
	return []any{
		row.TimeStamp.UTC().Format("2006-01-02"),
		row.AccountName,
		row.CategoryName,
		core.FormatAmount(row.Amount),
		row.TransactionID,
		row.AccountID,
		row.CategoryID,
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// four-digit year.
func yearPrefixedName(base string, year int) string {
	b := strings.TrimSpace(base)
	if len(b) >= 5 && b[4] == ' ' {
		if _, err := strconv.Atoi(b[:4]); err == nil {
			return b
		}
	}
	return fmt.Sprintf("%d %s", year, b)
}
