package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/gray-surface/internal/infrastructure/config"
)

// maxErrorBodyBytes limits how much of a failed response body is read for
// logging. Home Assistant error bodies are short; this guards against a
// misconfigured proxy returning something huge.
const maxErrorBodyBytes = 4 << 10 // 4KB

// Client talks to the Home Assistant REST API.
//
// It covers the two operations the bridge needs: reading an entity's current
// state and calling a service (light.turn_on, switch.toggle, ...). Requests
// carry bearer-token authentication and are bounded by the configured
// timeout, so a slow or unreachable instance cannot stall the caller
// indefinitely.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	// logger for failed-response bodies (optional, set via SetLogger).
	logger Logger
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// stateResponse is the subset of /api/states/{id} we consume.
type stateResponse struct {
	State string `json:"state"`
}

// New creates a Home Assistant client from configuration.
//
// Parameters:
//   - cfg: Home Assistant configuration from config.yaml
//
// Returns:
//   - *Client: Ready to use; no connection is made until the first request
func New(cfg config.HomeAssistantConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetLogger sets a logger for failed-response diagnostics.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// GetState fetches the current state of an entity.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - entityID: The entity to query, e.g. "switch.wavy_wub"
//
// Returns:
//   - string: The state value ("on", "off", "unavailable", ...)
//   - error: ErrRequestFailed (wrapped) on transport or non-200 responses
func (c *Client) GetState(ctx context.Context, entityID string) (string, error) {
	if entityID == "" {
		return "", ErrInvalidEntity
	}

	endpoint := fmt.Sprintf("%s/api/states/%s", c.baseURL, url.PathEscape(entityID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %w", ErrRequestFailed, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logErrorBody("get state failed", entityID, resp)
		return "", fmt.Errorf("%w: GET %s returned %d", ErrRequestFailed, entityID, resp.StatusCode)
	}

	var state stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return "", fmt.Errorf("%w: decoding state for %s: %w", ErrRequestFailed, entityID, err)
	}

	return state.State, nil
}

// CallService invokes a Home Assistant service with a JSON payload.
//
// Any response status other than 200 is a failure; the body is logged for
// diagnosis but not returned.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - domain: Service domain, e.g. "light" or "switch"
//   - service: Service name, e.g. "turn_on" or "toggle"
//   - data: Service payload; must include "entity_id"
//
// Returns:
//   - error: nil on success, ErrRequestFailed (wrapped) otherwise
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	if domain == "" || service == "" {
		return fmt.Errorf("%w: domain and service are required", ErrRequestFailed)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %w", ErrRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, url.PathEscape(domain), url.PathEscape(service))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrRequestFailed, err)
	}
	c.setHeaders(req)

	if c.logger != nil {
		c.logger.Debug("calling service", "domain", domain, "service", service, "payload", string(body))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logErrorBody("service call failed", domain+"."+service, resp)
		return fmt.Errorf("%w: POST %s/%s returned %d", ErrRequestFailed, domain, service, resp.StatusCode)
	}

	return nil
}

// HealthCheck verifies the Home Assistant API is reachable and the token is
// accepted.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/", nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrRequestFailed, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: health check returned %d", ErrRequestFailed, resp.StatusCode)
	}
}

// setHeaders applies authentication and content-type headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

// logErrorBody logs a truncated failure body if a logger is set.
func (c *Client) logErrorBody(msg, subject string, resp *http.Response) {
	if c.logger == nil {
		return
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	c.logger.Warn(msg,
		"subject", subject,
		"status", resp.StatusCode,
		"body", string(body),
	)
}
