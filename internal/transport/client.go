// Package transport provides the retrying HTTP primitive used by all fetchers.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/sentinel/internal/common"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultRetries   = 3
	DefaultRateLimit = 5 // requests per second
	DefaultUserAgent = "Sentinel/0.1 (+market-research)"

	maxBackoff = 8 * time.Second
)

// Error reports an exhausted retry loop for one URL.
type Error struct {
	URL      string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %s: %v", e.Attempts, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be parsed. It is
// never retried: a malformed payload will not improve on a second fetch.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response body from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client is a retrying HTTP GET/download client with rate limiting and
// exponential backoff. All outbound requests carry the configured
// User-Agent header.
type Client struct {
	httpClient *http.Client
	retries    int
	userAgent  string
	limiter    *rate.Limiter
	logger     *common.Logger
	sleep      func(time.Duration)
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets the maximum attempt count
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		if retries > 0 {
			c.retries = retries
		}
	}
}

// WithUserAgent sets the identifying header sent on every request
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// withSleep replaces the backoff sleeper, for tests.
func withSleep(sleep func(time.Duration)) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a new transport client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		userAgent:  DefaultUserAgent,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		sleep:      time.Sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// backoff returns the delay before the next attempt: 2^attempt seconds,
// capped at 8 seconds.
func backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// FetchText GETs a URL and returns the response body as a string.
func (c *Client) FetchText(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (string, error) {
	body, err := c.getWithRetry(ctx, rawURL, params, headers)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON GETs a URL and decodes the response body into result.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, result interface{}) error {
	body, err := c.getWithRetry(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{URL: rawURL, Err: err}
	}
	return nil
}

// Download streams a URL to destPath. The stream goes to a temporary
// sibling file which is renamed onto destPath only after a complete,
// successful read, so a failed download never clobbers the destination.
func (c *Client) Download(ctx context.Context, rawURL, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		err := c.downloadOnce(ctx, rawURL, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		c.logger.Warn().Int("attempt", attempt).Str("url", rawURL).Err(err).Msg("Download failed")
		if attempt < c.retries {
			c.sleep(backoff(attempt))
		}
	}

	return &Error{URL: rawURL, Attempts: c.retries, Err: lastErr}
}

func (c *Client) downloadOnce(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("stream failed: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, destPath)
}

func (c *Client) getWithRetry(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		body, err := c.getOnce(ctx, reqURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err

		c.logger.Warn().Int("attempt", attempt).Str("url", rawURL).Err(err).Msg("GET failed")
		if attempt < c.retries {
			c.sleep(backoff(attempt))
		}
	}

	return nil, &Error{URL: rawURL, Attempts: c.retries, Err: lastErr}
}

func (c *Client) getOnce(ctx context.Context, reqURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
