// Package extract pulls property and sale-listing records from the
// RentCast API. The client handles transient failures with exponential
// backoff, respects context cancellation during requests and waits, and
// keeps its sleep function and transport injectable for tests.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production RentCast API root.
const DefaultBaseURL = "https://api.rentcast.io/v1"

// Config configures the RentCast client.
//
// Zero values are given sensible defaults:
//   - BaseURL:        DefaultBaseURL
//   - Timeout:        30s
//   - MaxRetries:     3
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// APIKey is sent as the x-api-key header on every request.
	APIKey string

	// Timeout is the per-request timeout at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial
	// request. Zero means only the initial attempt.
	MaxRetries int

	// InitialBackoff is the backoff before the first retry; each retry
	// doubles it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Pause is the delay between consecutive addresses when walking the
	// API, to stay under the provider's rate limit.
	Pause time.Duration

	// Transport overrides the http.Transport, for tests.
	Transport http.RoundTripper
}

// Client is a retrying RentCast API client.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	pause          time.Duration

	// sleep is injectable to make tests fast and deterministic.
	sleep func(time.Duration)
}

// NewClient constructs a Client from cfg, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Pause <= 0 {
		cfg.Pause = 200 * time.Millisecond
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		pause:          cfg.Pause,
		sleep:          time.Sleep,
	}
}

// getJSON performs a GET against path with query parameters, retrying on
// transport errors, 429 and 5xx, and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("extract: build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if isRetryableStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("extract: retryable status %d from GET %s", resp.StatusCode, path)
		} else {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("extract: read body: %w", rerr)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("extract: status %d from GET %s: %s", resp.StatusCode, path, truncate(body, 200))
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("extract: decode response from GET %s: %w", path, err)
			}
			return nil
		}

		if attempt+1 >= attempts {
			return lastErr
		}
		if err := sleepWithContext(ctx, c.sleep, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return err
		}
	}
	return lastErr
}

// isRetryableStatus reports whether a status code should trigger a retry.
// 5xx and 429 are transient; everything else is final.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns the exponential backoff for the given 0-based
// retry index, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

// sleepWithContext waits for d via the injected sleep function, aborting
// early if ctx is canceled.
func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	go func() {
		sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
