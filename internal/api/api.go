package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"signal-agent/internal/logger"
)

// Client wraps a resty client with the defaults shared by the market data
// adapters.
type Client struct {
	rc         *resty.Client
	useLogging bool
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...interface{}) {
	if c.useLogging {
		logger.Debug(ctx, msg, args...)
	}
}

func (c *Client) logWarn(ctx context.Context, msg string, args ...interface{}) {
	if c.useLogging {
		logger.Warn(ctx, msg, args...)
	}
}

// ClientOption configures the API client
type ClientOption func(*Client)

// WithTimeout sets the per-attempt timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.rc.SetTimeout(timeout)
	}
}

// WithBaseURL sets the base URL for all requests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.rc.SetBaseURL(baseURL)
	}
}

// WithHeader sets a default header for all requests
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.rc.SetHeader(key, value)
	}
}

// WithLogging enables request logging
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.useLogging = enabled
	}
}

// WithRetry retries transport errors and 5xx responses up to count extra
// times with exponential backoff between wait and maxWait.
func WithRetry(count int, wait, maxWait time.Duration) ClientOption {
	return func(c *Client) {
		c.rc.SetRetryCount(count).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(maxWait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
			})
	}
}

// NewClient creates a new API client with the given options
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		rc: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json"),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// GET performs a GET request with optional query parameters. Any status
// >= 400 is returned as an error.
func (c *Client) GET(ctx context.Context, path string, query map[string]string) (*Response, error) {
	c.logDebug(ctx, "HTTP Request", "method", http.MethodGet, "path", path, "query", query)

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		c.logWarn(ctx, "HTTP request failed", "method", http.MethodGet, "path", path, "error", err)
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	c.logDebug(ctx, "HTTP Response",
		"method", http.MethodGet,
		"path", path,
		"status", resp.StatusCode(),
		"duration", resp.Time(),
		"bodySize", len(resp.Body()))

	if resp.IsError() {
		c.logWarn(ctx, "HTTP error response",
			"method", http.MethodGet,
			"path", path,
			"status", resp.StatusCode(),
			"body", resp.String())
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}, nil
}

// ParseJSON parses the response body as JSON into the given struct
func (r *Response) ParseJSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// String returns the response body as a string
func (r *Response) String() string {
	return string(r.Body)
}
