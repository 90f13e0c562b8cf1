// Package rest is the client of the hosted vector database API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/metrics"
)

// Client defaults.
const (
	DefaultRetries   = 3
	DefaultRetryWait = 2 * time.Second
	DefaultTimeout   = 30 * time.Second
	DefaultPageSize  = 100
)

// RegionURL returns the API base URL of a hosted region.
func RegionURL(region string) string {
	return "https://api-" + region + ".stack.tryrelevance.com/latest"
}

// Config holds the hosted API connection settings.
type Config struct {
	BaseURL   string
	Project   string
	APIKey    string
	Retries   int
	RetryWait time.Duration
	Timeout   time.Duration
	PageSize  int

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the hosted API. Safe for concurrent use.
type Client struct {
	baseURL   string
	auth      string
	retries   int
	retryWait time.Duration
	pageSize  int
	http      *http.Client
	logger    *zap.Logger
}

// New validates cfg and creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest: base URL is required")
	}
	if cfg.Project == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("rest: project and api key are required: %w", domain.ErrUnauthorized)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("rest: retries must not be negative, got %d", cfg.Retries)
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		auth:      cfg.Project + ":" + cfg.APIKey,
		retries:   cfg.Retries,
		retryWait: cfg.RetryWait,
		pageSize:  cfg.PageSize,
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// statusError is a non-2xx response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= http.StatusInternalServerError
}

// do sends a request and decodes the JSON response into out (if non-nil).
// Network errors, 429 and 5xx responses are retried with a constant wait.
func (c *Client) do(ctx context.Context, method, endpoint, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
	}

	start := time.Now()
	attempt := func() error {
		return c.attempt(ctx, method, path, body, out)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), uint64(c.retries)), ctx,
	)
	notify := func(err error, wait time.Duration) {
		metrics.RemoteRetriesTotal.WithLabelValues(endpoint).Inc()
		c.logger.Warn("Hosted API request failed, retrying",
			zap.String("endpoint", endpoint),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(attempt, policy, notify)
	metrics.RemoteRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s: %w", endpoint, mapError(err))
	}
	metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	return nil
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		se := &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(msg))}
		if se.retryable() {
			return se
		}
		return backoff.Permanent(se)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// mapError translates transport failures to domain sentinels.
func mapError(err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		var pe *backoff.PermanentError
		if errors.As(err, &pe) {
			return pe.Err
		}
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	switch {
	case se.status == http.StatusUnauthorized || se.status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, se)
	case se.status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, se)
	case se.status == http.StatusConflict:
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, se)
	case se.retryable():
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, se)
	case se.status == http.StatusBadRequest || se.status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, se)
	default:
		return se
	}
}
