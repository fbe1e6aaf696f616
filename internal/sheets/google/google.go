// Package google writes and reads spreadsheet tabs through the Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"estoque/internal/config"
	"estoque/internal/log"
	ports "estoque/internal/sheets"
)

// Config selects the spreadsheet and the credentials. A saved OAuth user
// token is used when OAuthTokenFile is set; otherwise a service account,
// with ServiceAccountJSON winning over CredentialsFile.
type Config struct {
	SpreadsheetID      string
	CredentialsFile    string
	ServiceAccountJSON string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
}

// FromAppConfig picks the spreadsheet settings out of the application config.
func FromAppConfig(c *config.Config) Config {
	return Config{
		SpreadsheetID:      c.GoogleSpreadsheetID,
		CredentialsFile:    c.GoogleCredentialsFile,
		ServiceAccountJSON: c.GoogleServiceAccountJSON,
		OAuthClientJSON:    c.GoogleOAuthClientJSON,
		OAuthClientFile:    c.GoogleOAuthClientFile,
		OAuthTokenFile:     c.GoogleOAuthTokenFile,
	}
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// Ensure interface conformance
var (
	_ ports.TabWriter = (*Client)(nil)
	_ ports.TabReader = (*Client)(nil)
)

// New creates a Sheets client authenticated with a user token or a service
// account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentMirror)

	var opts []goption.ClientOption
	if strings.TrimSpace(cfg.OAuthTokenFile) != "" {
		ts, err := tokenSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "Using OAuth user token", "path", cfg.OAuthTokenFile)
		opts = append(opts, goption.WithTokenSource(ts))
	} else {
		credentialsJSON, err := loadCredentials(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return NewWithService(svc, cfg.SpreadsheetID, logger), nil
}

// NewWithService wraps an existing service, used with custom endpoints.
func NewWithService(svc *gsheet.Service, spreadsheetID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}
}

func loadCredentials(ctx context.Context, cfg Config, logger *log.Logger) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case credentialsFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ReplaceTab clears the tab and writes rows starting at A1.
func (c *Client) ReplaceTab(ctx context.Context, tab string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	name := quoteTab(tab)

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, name, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, name+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}
	c.logger.DebugContext(ctx, "Tab replaced", "tab", tab, "rows", resp.UpdatedRows)
	return nil
}

// ReadTab returns every non-empty row of the tab as trimmed text.
func (c *Client) ReadTab(ctx context.Context, tab string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		out = append(out, cols)
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

// quoteTab wraps a tab name for A1 notation, doubling inner quotes.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
