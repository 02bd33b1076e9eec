// Package bi implements the push.Sink against the BI service's dataset
// HTTP API.
package bi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dialview/icws-monitor/internal/push"
	"github.com/rs/zerolog"
)

// Config carries the BI service connection settings
type Config struct {
	BaseURL      string
	DatasetID    string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Client is a push.Sink that authenticates with client credentials and
// appends rows to dataset tables. Safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
	now    func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// tokenExpirySlack renews the token slightly before the server-side expiry
const tokenExpirySlack = 30 * time.Second

// NewClient creates a BI client with a 15s request timeout
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger.With().Str("component", "bi").Logger(),
		now:    time.Now,
	}
}

// SetHTTPClient overrides the underlying HTTP client (tests)
func (c *Client) SetHTTPClient(hc *http.Client) { c.http = hc }

// SetClock overrides the wall clock (tests)
func (c *Client) SetClock(now func() time.Time) { c.now = now }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate obtains a bearer token. A cached unexpired token is reused
// unless forceRefresh is set.
func (c *Client) Authenticate(ctx context.Context, forceRefresh bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.token != "" && c.now().Before(c.tokenExpiry) {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("token response contained no access token")
	}

	c.token = tr.AccessToken
	expiresIn := time.Duration(tr.ExpiresIn) * time.Second
	if expiresIn <= tokenExpirySlack {
		expiresIn = time.Hour
	}
	c.tokenExpiry = c.now().Add(expiresIn - tokenExpirySlack)

	c.logger.Debug().Bool("forced", forceRefresh).Msg("acquired bi access token")
	return nil
}

// AddRows appends rows to a dataset table
func (c *Client) AddRows(ctx context.Context, table string, rows []push.Row) error {
	if len(rows) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("failed to encode rows for table %s: %w", table, err)
	}

	url := fmt.Sprintf("%s/datasets/%s/tables/%s/rows", c.cfg.BaseURL, c.cfg.DatasetID, table)
	resp, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("add rows to %s returned status %d", table, resp.StatusCode)
	}

	c.logger.Debug().Str("table", table).Int("rows", len(rows)).Msg("rows delivered")
	return nil
}

// EnsureTable creates the table with the given schema when it does not
// already exist. An existing table (409) is not an error.
func (c *Client) EnsureTable(ctx context.Context, table string, columns []Column) error {
	body, err := json.Marshal(map[string]any{
		"name":    table,
		"columns": columns,
	})
	if err != nil {
		return fmt.Errorf("failed to encode schema for table %s: %w", table, err)
	}

	url := fmt.Sprintf("%s/datasets/%s/tables", c.cfg.BaseURL, c.cfg.DatasetID)
	resp, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.logger.Info().Str("table", table).Msg("table created")
		return nil
	case resp.StatusCode == http.StatusConflict:
		c.logger.Debug().Str("table", table).Msg("table already exists")
		return nil
	default:
		return fmt.Errorf("create table %s returned status %d", table, resp.StatusCode)
	}
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to bi service failed: %w", err)
	}
	return resp, nil
}
