// Package httpclient provides the HTTP transport used to reach SDMX
// endpoints. The core never retries on its own; an optional retry policy can
// be enabled here, at the transport layer, by the caller.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/leourb/sdmx-query-tool/internal/logger"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (100MB)
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "sdmx-query-tool/1.0"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is an interface for HTTP operations against SDMX endpoints
type Client interface {
	// Get performs an HTTP GET request with the given headers and returns the
	// response status, content type, and body
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Response holds the parts of an HTTP response the parsing pipeline needs.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client     *http.Client
	maxRetries uint
}

// Option configures a DefaultClient.
type Option func(*DefaultClient)

// WithTimeout sets the per-request timeout. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *DefaultClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithRetries enables transport-level retries with exponential backoff for
// transport errors and 5xx responses. Non-5xx HTTP errors are never retried.
func WithRetries(maxRetries uint) Option {
	return func(c *DefaultClient) {
		c.maxRetries = maxRetries
	}
}

// NewDefaultClient creates a new default HTTP client
func NewDefaultClient(opts ...Option) Client {
	c := &DefaultClient{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request
func (c *DefaultClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if c.maxRetries == 0 {
		return c.get(ctx, url, headers)
	}

	resp, err := backoff.Retry(ctx, func() (*Response, error) {
		resp, err := c.get(ctx, url, headers)
		if err != nil {
			var retrievalErr *RetrievalError
			// Only transport failures and 5xx responses are worth retrying.
			if errors.As(err, &retrievalErr) && retrievalErr.StatusCode >= 400 && retrievalErr.StatusCode < 500 {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(c.maxRetries+1))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *DefaultClient) get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	logger.Debugf("GET %s (request %s)", url, requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warnf("GET %s returned %s (request %s)", url, resp.Status, requestID)
		return nil, &RetrievalError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize)
	}

	// +1 to detect when the limit is exceeded
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes", MaxResponseSize)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
