// Package client provides the HTTP client for the Replicate job service.
//
// Usage:
//
//	c, err := client.New(client.WithToken("r8_..."))
//
//	// Create a job and block until it finishes.
//	out, err := c.Run(ctx, "owner/model:version", job.Input{"prompt": "hi"}, nil)
//
//	// Or stream its events as they arrive.
//	p, err := c.Stream(ctx, "owner/model", job.Input{"prompt": "hi"}, nil)
//	defer p.Close()
//	for evt := range p.Events() {
//	    fmt.Print(evt)
//	}
package client

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

	"golang.org/x/time/rate"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/ext"
	"github.com/xraph/replicate/id"
	"github.com/xraph/replicate/middleware"
)

// Client talks to the service over HTTP. Its configuration is fixed by New;
// every method is safe for concurrent use.
type Client struct {
	cfg        replicate.Config
	httpClient *http.Client
	logger     *slog.Logger

	extensions  []ext.Extension
	exts        *ext.Registry
	middlewares []middleware.Middleware
	send        middleware.Handler
	limiter     *rate.Limiter
}

// New creates a Client. The token comes from WithToken or, failing that,
// the REPLICATE_API_TOKEN environment variable; with neither New returns
// replicate.ErrNoToken.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		cfg:        replicate.DefaultConfig(),
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	token, err := replicate.ResolveToken(c.cfg.Token)
	if err != nil {
		return nil, err
	}
	c.cfg.Token = token
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.cfg.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	if c.cfg.MaxRetries < 0 {
		c.cfg.MaxRetries = 0
	}

	c.exts = ext.NewRegistry(c.logger)
	for _, e := range c.extensions {
		c.exts.Register(e)
	}
	if exts := c.exts.Extensions(); len(exts) > 0 {
		names := make([]string, 0, len(exts))
		for _, e := range exts {
			names = append(names, e.Name())
		}
		c.logger.Debug("replicate: extensions registered", slog.Any("extensions", names))
	}

	c.send = middleware.Wrap(c.httpClient.Do, c.middlewares...)

	if c.cfg.RateLimit > 0 {
		burst := c.cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(c.cfg.RateLimit), burst)
	}

	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() replicate.Config { return c.cfg }

// Extensions returns the extension registry.
func (c *Client) Extensions() *ext.Registry { return c.exts }

// Do sends one logical request and decodes a successful JSON response into
// out (which may be nil). path is joined to the base URL unless it is
// already absolute.
//
// Non-2xx responses are retried with backoff: GET on 429 and any 5xx,
// other methods only on 429. At most MaxRetries+1 attempts are made. A
// final failure is returned as *replicate.APIError. Transport failures are
// returned at once as *replicate.TransportError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.resolveURL(path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("replicate: encode %s %s body: %w", method, path, err)
		}
	}

	reqID := requestIDFrom(ctx)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("replicate: %s %s: rate limit: %w", method, path, err)
			}
		}

		req, err := c.newRequest(ctx, method, url, payload, reqID)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.send(req)
		a := ext.Attempt{
			RequestID: reqID,
			Method:    method,
			URL:       url,
			Number:    attempt,
			Elapsed:   time.Since(start),
		}

		if err != nil {
			a.Err = err
			c.exts.EmitRequestAttempted(ctx, a)
			c.logger.Warn("request failed",
				slog.Any("request_id", reqID),
				slog.String("method", method),
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			return &replicate.TransportError{Method: method, URL: url, Err: err}
		}

		a.StatusCode = resp.StatusCode

		if isSuccess(resp.StatusCode) {
			c.exts.EmitRequestAttempted(ctx, a)
			c.logger.Debug("request succeeded",
				slog.Any("request_id", reqID),
				slog.String("method", method),
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Int("status", resp.StatusCode),
			)
			return decodeResponse(resp, method, url, out)
		}

		if attempt >= c.cfg.MaxRetries || !shouldRetry(method, resp.StatusCode) {
			raw, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			c.exts.EmitRequestAttempted(ctx, a)
			if readErr != nil {
				return &replicate.TransportError{Method: method, URL: url, Err: readErr}
			}
			apiErr := replicate.NewAPIError(resp.StatusCode, raw)
			c.logger.Warn("request rejected",
				slog.Any("request_id", reqID),
				slog.String("method", method),
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Int("status", resp.StatusCode),
				slog.String("error", apiErr.Error()),
			)
			return apiErr
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		delay := c.cfg.Backoff.Delay(attempt)
		a.Retry = true
		a.Delay = delay
		c.exts.EmitRequestAttempted(ctx, a)
		c.logger.Info("retrying request",
			slog.Any("request_id", reqID),
			slog.String("method", method),
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Int("status", resp.StatusCode),
			slog.Duration("delay", delay),
		)

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("replicate: %s %s: %w", method, path, err)
		}
	}
}

func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cfg.BaseURL + path
}

func (c *Client) newRequest(ctx context.Context, method, url string, payload []byte, reqID id.ID) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("replicate: build %s %s: %w", method, url, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("X-Request-Id", reqID.String())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func decodeResponse(resp *http.Response, method, url string, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &replicate.TransportError{Method: method, URL: url, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", replicate.ErrDecode, method, url, err)
	}
	return nil
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }

// shouldRetry reports whether a response status is worth another attempt.
// Only GET is treated as idempotent.
func shouldRetry(method string, code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return method == http.MethodGet && code >= 500 && code <= 599
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
