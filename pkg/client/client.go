// Package client provides the Roblox web API HTTP client: JSON requests with
// status validation, typed failures, rate limit gating, CSRF token handling,
// and a caller-side retry policy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeaderCSRFToken is the header Roblox uses for its CSRF handshake on
// state-changing verbs (the catalog details endpoint is a POST).
const HeaderCSRFToken = "X-Csrf-Token"

// Client issues JSON requests against Roblox web APIs.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger

	csrfMu    sync.RWMutex
	csrfToken string
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request.
	UserAgent string

	// Timeout is the deadline applied to each request.
	Timeout time.Duration

	// BodyExcerptLimit caps the response body carried by HTTPError.
	BodyExcerptLimit int

	// RateLimiter gates requests on observed rate limit headers (optional).
	RateLimiter *ratelimit.Tracker
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:        userAgent,
		Timeout:          30 * time.Second,
		BodyExcerptLimit: 200,
	}
}

// New creates a new Roblox API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BodyExcerptLimit <= 0 {
		cfg.BodyExcerptLimit = 200
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: cfg.RateLimiter,
		config:      cfg,
		logger:      log.With().Str("component", "roblox-client").Logger(),
	}, nil
}

// Do sends req after waiting on the rate limiter. The response is returned
// whatever its status; status validation belongs to FetchJSON. A 403 that
// carries a fresh x-csrf-token is replayed once with that token.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.waitRateLimit(req.Context()); err != nil {
		return nil, err
	}
	return c.do(req)
}

// waitRateLimit blocks until the rate limiter admits a request. ctx must not
// carry the per-request timeout: a 429 cooldown may outlast it.
func (c *Client) waitRateLimit(ctx context.Context) error {
	if c.rateLimiter == nil {
		return nil
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	host := req.URL.Host

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if req.Method != http.MethodGet {
		if token := c.token(); token != "" {
			req.Header.Set(HeaderCSRFToken, token)
		}
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden && req.Method != http.MethodGet {
		if token := resp.Header.Get(HeaderCSRFToken); token != "" && token != req.Header.Get(HeaderCSRFToken) {
			c.setToken(token)
			csrfRefreshTotal.Inc()
			c.logger.Debug().Str("url", req.URL.String()).Msg("Replaying request with refreshed CSRF token")

			replay, err := rewind(req)
			if err != nil {
				return resp, nil
			}
			resp.Body.Close()
			replay.Header.Set(HeaderCSRFToken, token)
			return c.send(replay)
		}
	}

	return resp, nil
}

// send performs a single round trip and records rate limit headers and metrics.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	host := req.URL.Host

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing Roblox request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(host, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.String(), err)
	}

	requestsTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()

	if c.rateLimiter != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.rateLimiter.ObserveTooManyRequests(resp.Header)
		} else if err := c.rateLimiter.UpdateFromHeaders(resp.Header); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	return resp, nil
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.FetchJSON(ctx, http.MethodGet, url, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	return c.FetchJSON(ctx, http.MethodPost, url, body, out)
}

// FetchJSON issues a request, validates the status and decodes the body into
// out (skipped when out is nil). It makes a single attempt; wrap it in Retry
// for a retry policy. The rate limit wait runs on ctx; Timeout bounds only
// the round trip.
func (c *Client) FetchJSON(ctx context.Context, method, url string, body, out any) error {
	if err := c.waitRateLimit(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Status:      resp.StatusCode,
			StatusText:  http.StatusText(resp.StatusCode),
			URL:         url,
			BodyExcerpt: excerpt(data, c.config.BodyExcerptLimit),
			Class:       classifyStatus(resp.StatusCode),
		}
		errorsTotal.WithLabelValues(string(httpErr.Class)).Inc()
		c.logger.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Str("error_class", string(httpErr.Class)).
			Msg("Roblox request error")
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
		return &ParseError{URL: url, Err: err}
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) token() string {
	c.csrfMu.RLock()
	defer c.csrfMu.RUnlock()
	return c.csrfToken
}

func (c *Client) setToken(token string) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	c.csrfToken = token
}

// rewind clones req with a fresh body so it can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func excerpt(data []byte, limit int) string {
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}
