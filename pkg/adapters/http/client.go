package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// DefaultTimeout bounds a single request when no http.Client is injected.
const DefaultTimeout = 30 * time.Second

// Client fetches resolver requests from a WordPress REST API root.
// It implements ports.Fetcher.
type Client struct {
	baseURL  string
	client   *http.Client
	username string
	password string
	nonce    string
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient injects the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.client = &http.Client{Timeout: d}
	}
}

// WithApplicationPassword authenticates with HTTP basic auth (WordPress application passwords).
func WithApplicationPassword(username, password string) ClientOption {
	return func(cl *Client) {
		cl.username = username
		cl.password = password
	}
}

// WithNonce authenticates with a cookie nonce sent as X-WP-Nonce.
func WithNonce(nonce string) ClientOption {
	return func(cl *Client) {
		cl.nonce = nonce
	}
}

// WithClientLogger sets the request logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client for the API rooted at baseURL (e.g. https://example.com/wp-json).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wpError is the error body returned by the REST API.
type wpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

// Fetch performs a GET of req.Path and returns the body.
// Non-2xx responses are returned as *domain.FetchError; other failures wrap domain.ErrFetchFailed.
func (c *Client) Fetch(ctx context.Context, req domain.FetchRequest) (json.RawMessage, error) {
	fullURL := c.baseURL + req.Path

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// W3C trace context so a failed request can be found in the server logs.
	traceParent := createTraceParent()
	httpReq.Header.Set("Traceparent", traceParent)
	httpReq.Header.Set("Accept", "application/json")

	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}
	if c.nonce != "" {
		httpReq.Header.Set("X-WP-Nonce", c.nonce)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("http request failed", "path", req.Path, "duration", duration, "traceparent", traceParent, "error", err)
		return nil, fmt.Errorf("%w: http request failed: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading response body", "path", req.Path, "status", resp.StatusCode, "traceparent", traceParent, "error", err)
		return nil, fmt.Errorf("%w: reading response body: %w", domain.ErrFetchFailed, err)
	}

	c.logger.Debug("fetch", "path", req.Path, "status", resp.StatusCode, "duration", duration, "traceparent", traceParent)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newFetchError(req.Path, resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid JSON from %s (trace ID: %s)", domain.ErrFetchFailed, req.Path, extractTraceID(traceParent))
	}

	return json.RawMessage(body), nil
}

func newFetchError(path string, status int, body []byte) *domain.FetchError {
	fe := &domain.FetchError{Status: status, Path: path}

	var wp wpError
	if err := json.Unmarshal(body, &wp); err == nil {
		fe.Code = wp.Code
		fe.Message = wp.Message
	}
	return fe
}

// generateID returns n random bytes hex encoded.
func generateID(n int) string {
	bytes := make([]byte, n)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateID(16), generateID(8))
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}
	return traceParent
}

var _ ports.Fetcher = (*Client)(nil)
