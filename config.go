package replicate

import (
	"os"
	"strings"
	"time"

	"github.com/xraph/replicate/backoff"
)

// EnvToken is the environment variable consulted when no token is given.
const EnvToken = "REPLICATE_API_TOKEN"

// DefaultBaseURL is the hosted service endpoint.
const DefaultBaseURL = "https://api.replicate.com/v1"

// Config holds configuration for a Client. It is fixed at construction and
// read concurrently by every call afterwards.
type Config struct {
	// BaseURL is prefixed to every relative request path.
	BaseURL string

	// Token is the bearer credential.
	Token string

	// MaxRetries bounds retries per logical request. Total attempts never
	// exceed MaxRetries+1.
	MaxRetries int

	// Backoff chooses the delay before each retry.
	Backoff backoff.Strategy

	// RateLimit caps outbound attempts per second. Zero disables limiting.
	RateLimit float64

	// RateBurst is the token-bucket burst. Defaults to 1 when RateLimit is set.
	RateBurst int

	// RunPollInterval and RunTimeout bound the polling loop of Run.
	RunPollInterval time.Duration
	RunTimeout      time.Duration

	// WaitPollInterval and WaitTimeout are the defaults for Wait.
	WaitPollInterval time.Duration
	WaitTimeout      time.Duration

	// StreamReconnectDelay is the pause before reopening a broken stream.
	StreamReconnectDelay time.Duration

	// StreamBufferSize is the capacity of the event and error channels.
	StreamBufferSize int
}

// DefaultConfig returns a Config with the service defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:              DefaultBaseURL,
		MaxRetries:           5,
		Backoff:              backoff.DefaultStrategy(),
		RunPollInterval:      5 * time.Second,
		RunTimeout:           600 * time.Second,
		WaitPollInterval:     1 * time.Second,
		WaitTimeout:          3600 * time.Second,
		StreamReconnectDelay: 1 * time.Second,
		StreamBufferSize:     64,
	}
}

// ResolveToken returns the explicit token when set, otherwise the value of
// EnvToken. Blank values count as absent.
func ResolveToken(explicit string) (string, error) {
	if tok := strings.TrimSpace(explicit); tok != "" {
		return tok, nil
	}
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}
