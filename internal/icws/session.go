// Package icws is a minimal session client for the switch's polling API.
package icws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

// Config carries the switch connection settings
type Config struct {
	BaseURL  string
	Username string
	Password string
	Station  string
}

// Session implements poller.Source over the switch's HTTP API. Sessions
// expire server-side; the poller reconnects on any poll error, so Session
// makes no recovery attempt of its own.
type Session struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger

	sessionID string
	token     string
}

// NewSession creates a session client with a 10s request timeout
func NewSession(cfg Config, logger zerolog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "icws").Logger(),
	}
}

// SetHTTPClient overrides the underlying HTTP client (tests)
func (s *Session) SetHTTPClient(hc *http.Client) { s.http = hc }

type connectRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Station  string `json:"station,omitempty"`
}

type connectResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"csrfToken"`
}

// Connect establishes a fresh session, discarding any previous one
func (s *Session) Connect(ctx context.Context) error {
	body, err := json.Marshal(connectRequest{
		UserID:   s.cfg.Username,
		Password: s.cfg.Password,
		Station:  s.cfg.Station,
	})
	if err != nil {
		return fmt.Errorf("failed to encode connect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/connection", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build connect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("connect returned status %d", resp.StatusCode)
	}

	var cr connectResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return fmt.Errorf("failed to decode connect response: %w", err)
	}
	if cr.SessionID == "" {
		return fmt.Errorf("connect response contained no session id")
	}

	s.sessionID = cr.SessionID
	s.token = cr.Token

	s.logger.Info().Str("session_id", cr.SessionID).Msg("session established")
	return nil
}

// Poll fetches the messages accumulated since the previous poll
func (s *Session) Poll(ctx context.Context) ([]types.Message, error) {
	if s.sessionID == "" {
		return nil, fmt.Errorf("poll without established session")
	}

	url := fmt.Sprintf("%s/%s/messaging/messages", s.cfg.BaseURL, s.sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poll request: %w", err)
	}
	req.Header.Set("ININ-ICWS-CSRF-Token", s.token)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("poll returned status %d", resp.StatusCode)
	}

	var msgs []types.Message
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return msgs, nil
}
