// ABOUTME: Standard HTTP client implementation with retry logic and timeout support
// ABOUTME: Fetches article pages with exponential backoff on transport errors and 5xx responses

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"highlights-app-api/core/interfaces"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries = 2
	defaultUserAgent  = "Mozilla/5.0 (compatible; HighlightsReader/1.0)"
)

// Option customizes a StandardHTTPClient
type Option func(*StandardHTTPClient)

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *StandardHTTPClient) { c.userAgent = ua }
}

// WithMaxRetries sets how many times a failed GET is retried
func WithMaxRetries(n uint64) Option {
	return func(c *StandardHTTPClient) { c.maxRetries = n }
}

// WithInitialBackoff sets the first retry delay
func WithInitialBackoff(d time.Duration) Option {
	return func(c *StandardHTTPClient) { c.initialBackoff = d }
}

// WithTransport replaces the transport of the underlying http.Client
func WithTransport(rt http.RoundTripper) Option {
	return func(c *StandardHTTPClient) { c.client.Transport = rt }
}

// StandardHTTPClient implements the HTTPClient interface on net/http
type StandardHTTPClient struct {
	client         *http.Client
	userAgent      string
	maxRetries     uint64
	initialBackoff time.Duration
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration, opts ...Option) *StandardHTTPClient {
	c := &StandardHTTPClient{
		client:         &http.Client{Timeout: timeout},
		userAgent:      defaultUserAgent,
		maxRetries:     defaultMaxRetries,
		initialBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StandardHTTPClient) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}

// Get performs an HTTP GET request. Transport errors and 5xx responses are
// retried; the last 5xx response is returned when retries run out.
func (c *StandardHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	var resp *http.Response
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

		r, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if resp != nil {
			resp.Body.Close()
		}
		resp = r
		if r.StatusCode >= 500 {
			return fmt.Errorf("server returned %d", r.StatusCode)
		}
		return nil
	}

	err := backoff.Retry(op, c.policy(ctx))
	if resp == nil {
		return nil, err
	}
	if err != nil && resp.StatusCode < 500 {
		resp.Body.Close()
		return nil, err
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}, nil
}

// Post performs an HTTP POST request. It is never retried.
func (c *StandardHTTPClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}, nil
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}
