package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// GatewayClient talks to the calendar gateway, the REST service that owns the
// Google credentials and performs the provider calls on our behalf.
type GatewayClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logging.Logger
}

// NewGatewayClient creates a gateway client.
func NewGatewayClient(baseURL, token string, logger *logging.Logger) (*GatewayClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("calendar: gateway base URL required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GatewayClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}, nil
}

// ListCalendars fetches the calendars of the linked account. A 400 means the
// account is not linked yet.
func (c *GatewayClient) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var out struct {
		Calendars []CalendarInfo `json:"calendars"`
	}
	if err := c.do(ctx, http.MethodGet, "/calendar/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Calendars, nil
}

// AuthURL asks the gateway for a fresh authorization URL and state token.
func (c *GatewayClient) AuthURL(ctx context.Context) (AuthURLResponse, error) {
	var out AuthURLResponse
	if err := c.do(ctx, http.MethodGet, "/calendar/auth-url", nil, &out); err != nil {
		return AuthURLResponse{}, err
	}
	return out, nil
}

// Sync triggers a remote synchronization run.
func (c *GatewayClient) Sync(ctx context.Context) (SyncResult, error) {
	var out SyncResult
	if err := c.do(ctx, http.MethodPost, "/calendar/sync", struct{}{}, &out); err != nil {
		return SyncResult{}, err
	}
	return out, nil
}

// Disconnect removes the account link on the gateway side.
func (c *GatewayClient) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/calendar/disconnect", struct{}{}, nil)
}

func (c *GatewayClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("calendar: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("calendar: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("calendar: read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Message: gatewayErrMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("calendar: decode gateway response: %w", err)
		}
	}
	return nil
}

func gatewayErrMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

var _ Service = (*GatewayClient)(nil)
