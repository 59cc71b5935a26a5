package pushbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Paths on the push token service.
const (
	createTokenPath     = "/push/tokens"
	invalidateTokenPath = "/push/tokens/invalidate"
)

// TokenRecord is the wire shape for token sync calls. AppID and UserID are
// looked up at send time rather than stored on the token, so a user identity
// change between calls never sends a stale id.
type TokenRecord struct {
	Token  string `json:"token"`
	AppID  string `json:"app_id"`
	UserID string `json:"user_id,omitempty"`
}

// TokenAPI is the remote synchronization contract the coordinator drives.
type TokenAPI interface {
	// CreateToken registers or updates a token with the remote service.
	CreateToken(ctx context.Context, rec TokenRecord) error

	// InvalidateToken marks a token invalid on the remote service.
	InvalidateToken(ctx context.Context, rec TokenRecord) error
}

// ServiceClientOption configures ServiceClient.
type ServiceClientOption func(*ServiceClient)

// WithServiceHTTPClient sets a custom HTTP client.
func WithServiceHTTPClient(client *http.Client) ServiceClientOption {
	return func(c *ServiceClient) {
		c.httpClient = client
	}
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(logger *slog.Logger) ServiceClientOption {
	return func(c *ServiceClient) {
		c.logger = logger
	}
}

// ServiceClient talks to the push token service over HTTP with JSON bodies.
type ServiceClient struct {
	base       string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewServiceClient creates a client for the service rooted at base.
func NewServiceClient(base string, opts ...ServiceClientOption) *ServiceClient {
	c := &ServiceClient{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateToken registers or updates the token record.
func (c *ServiceClient) CreateToken(ctx context.Context, rec TokenRecord) error {
	return c.post(ctx, createTokenPath, rec)
}

// InvalidateToken invalidates the token record.
func (c *ServiceClient) InvalidateToken(ctx context.Context, rec TokenRecord) error {
	return c.post(ctx, invalidateTokenPath, rec)
}

func (c *ServiceClient) post(ctx context.Context, path string, body any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serializing request body: %w", err)
	}

	url := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug(">>> POST", "url", url)
	c.logger.Debug("  Request body", "json", string(bodyBytes))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	c.logger.Debug("<<< Response", "status", resp.StatusCode, "url", url)
	c.logger.Debug("  Response body", "length", len(respBody), "json", truncate(string(respBody), 2000))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(respBody),
		URL:        url,
		Method:     http.MethodPost,
	}
}

// truncate returns the first maxLen characters of s, or s itself if shorter.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
