package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/replicate/backoff"
	"github.com/xraph/replicate/ext"
	"github.com/xraph/replicate/middleware"
)

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token. Without it New falls back to the
// REPLICATE_API_TOKEN environment variable.
func WithToken(token string) Option {
	return func(c *Client) { c.cfg.Token = token }
}

// WithBaseURL overrides the service endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.cfg.BaseURL = url }
}

// WithMaxRetries sets how many times a request may be retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.cfg.MaxRetries = n }
}

// WithBackoff sets the retry delay strategy.
func WithBackoff(s backoff.Strategy) Option {
	return func(c *Client) {
		if s != nil {
			c.cfg.Backoff = s
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithExtension registers an extension. Extensions are notified in the
// order they were added.
func WithExtension(e ext.Extension) Option {
	return func(c *Client) { c.extensions = append(c.extensions, e) }
}

// WithMiddleware appends HTTP middleware. The first middleware given is
// the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, mws...) }
}

// WithRateLimit caps outbound attempts to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.cfg.RateLimit = perSecond
		c.cfg.RateBurst = burst
	}
}

// WithRunPolling sets the poll interval and wall-clock bound used by Run.
func WithRunPolling(interval, timeout time.Duration) Option {
	return func(c *Client) {
		c.cfg.RunPollInterval = interval
		c.cfg.RunTimeout = timeout
	}
}

// WithWaitDefaults sets the default poll interval and timeout for Wait.
func WithWaitDefaults(interval, timeout time.Duration) Option {
	return func(c *Client) {
		c.cfg.WaitPollInterval = interval
		c.cfg.WaitTimeout = timeout
	}
}

// WithStreamReconnectDelay sets the pause before a stream reconnects.
func WithStreamReconnectDelay(d time.Duration) Option {
	return func(c *Client) { c.cfg.StreamReconnectDelay = d }
}

// WithStreamBufferSize sets the stream event and error channel capacity.
func WithStreamBufferSize(n int) Option {
	return func(c *Client) { c.cfg.StreamBufferSize = n }
}
