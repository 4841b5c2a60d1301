package inventory

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

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/config"
)

// TokenSource supplies the bearer token attached to authenticated calls.
// An empty token means the call goes out anonymous.
type TokenSource interface {
	AccessToken() string
}

// Client talks to the remote inventory service. It is the single place
// that attaches credentials and the single place that reacts to a 401:
// any authenticated call that comes back 401 fires the session-expired
// hook before returning.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	tokens           TokenSource
	onSessionExpired func()
}

// NewClient creates a new inventory service client
func NewClient(cfg config.InventoryConfig, logger *zap.Logger) *Client {
	// Normalize base URL - remove trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetTokenSource installs the source of the session bearer token.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// OnSessionExpired installs the hook fired when an authenticated call is
// rejected with 401.
func (c *Client) OnSessionExpired(fn func()) {
	c.onSessionExpired = fn
}

// do executes one request with the session token attached and returns the
// response body and status code. Transport-level failures are reported as
// ErrConnection.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, int, error) {
	return c.execute(ctx, method, path, query, payload, true)
}

// doAnonymous executes one request without credentials; used by the auth
// endpoints where a 401 means bad input, not an expired session.
func (c *Client) doAnonymous(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	return c.execute(ctx, method, path, nil, payload, false)
}

func (c *Client) execute(ctx context.Context, method, path string, query url.Values, payload interface{}, withAuth bool) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	authenticated := false
	if withAuth && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Inventory request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		c.logger.Info("Session expired", zap.String("path", path))
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return body, resp.StatusCode, ErrSessionExpired
	}

	return body, resp.StatusCode, nil
}
