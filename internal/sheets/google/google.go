package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var (
	_ ports.Workbook  = (*Client)(nil)
	_ ports.RowWriter = (*Client)(nil)
	_ ports.Pinger    = (*Client)(nil)
)

// Credentials locates the service account key. The first non-empty
// source wins, in field order.
type Credentials struct {
	JSON     string // inline key (GOOGLE_SERVICE_ACCOUNT_JSON or GCRED_JSON)
	File     string // GOOGLE_SERVICE_ACCOUNT_FILE
	ADCFile  string // GOOGLE_APPLICATION_CREDENTIALS
	Endpoint string // optional API endpoint override, used by tests
}

// CredentialsFromEnv reads the credential environment variables.
func CredentialsFromEnv() Credentials {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	if inline == "" {
		inline = strings.TrimSpace(os.Getenv("GCRED_JSON"))
	}
	return Credentials{
		JSON:    inline,
		File:    strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
		ADCFile: strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	}
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID and one credential source.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, os.Getenv("GOOGLE_SPREADSHEET_ID"), CredentialsFromEnv())
}

// New creates a Sheets client for spreadsheetID.
func New(ctx context.Context, spreadsheetID string, creds Credentials) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(ctx, creds)
	if err != nil {
		return nil, err
	}
	credentialsJSON, err = normalizePrivateKey(credentialsJSON)
	if err != nil {
		return nil, err
	}

	opts := []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}
	if creds.Endpoint != "" {
		opts = append(opts, goption.WithEndpoint(creds.Endpoint))
	}
	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

func loadCredentials(ctx context.Context, creds Credentials) ([]byte, error) {
	switch {
	case creds.JSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(creds.JSON), nil
	case creds.File != "" || creds.ADCFile != "":
		path := creds.File
		if path == "" {
			path = creds.ADCFile
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", path, "size", len(b))
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GCRED_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// normalizePrivateKey turns escaped "\n" sequences in private_key into
// real newlines. Keys pasted into an environment variable often arrive
// double-escaped.
func normalizePrivateKey(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse service account json: %w", err)
	}
	key, ok := doc["private_key"].(string)
	if !ok || !strings.Contains(key, `\n`) {
		return raw, nil
	}
	doc["private_key"] = strings.ReplaceAll(key, `\n`, "\n")
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode service account json: %w", err)
	}
	return out, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API
// with connection pooling and bounded timeouts.
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

// NewWithHTTPClient creates a client that talks to endpoint without
// authentication. Intended for emulators and tests.
func NewWithHTTPClient(ctx context.Context, spreadsheetID, endpoint string, hc *http.Client) (*Client, error) {
	if hc == nil {
		hc = newHTTPClientWithPooling()
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(hc),
		goption.WithEndpoint(endpoint),
		goption.WithoutAuthentication())
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

// ReadTable reads every row of sheet. The first row is the header.
// Numbers come back unformatted and dates as displayed.
func (c *Client) ReadTable(ctx context.Context, sheet string) (ports.Table, error) {
	if c.svc == nil {
		return ports.Table{}, errors.New("sheets service not initialized")
	}
	rng := quoteSheet(sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return ports.Table{}, fmt.Errorf("%w: %s", ports.ErrSheetNotFound, sheet)
		}
		return ports.Table{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return toTable(sheet, resp.Values), nil
}

// AppendRows appends rows below the last used row of sheet.
func (c *Client) AppendRows(ctx context.Context, sheet string, rows [][]string) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(rows) == 0 {
		return "", nil
	}
	vr := &gsheet.ValueRange{Values: toValues(rows)}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quoteSheet(sheet)+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return quoteSheet(sheet), nil
}

// UpdateCell overwrites one cell.
func (c *Client) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: row=%d col=%d", ports.ErrInvalidCell, row, col)
	}
	rng := fmt.Sprintf("%s!%s%d", quoteSheet(sheet), columnLetter(col), row)
	vr := &gsheet.ValueRange{Values: [][]any{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// WriteRow overwrites row starting at column A.
func (c *Client) WriteRow(ctx context.Context, sheet string, row int, cells []string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if row < 1 {
		return fmt.Errorf("%w: row=%d", ports.ErrInvalidCell, row)
	}
	if len(cells) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, columnLetter(len(cells)), row)
	vr := &gsheet.ValueRange{Values: toValues([][]string{cells})}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

// Ping checks that the spreadsheet is reachable with the configured
// credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}
