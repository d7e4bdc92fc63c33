// Package backoff provides pluggable retry delay strategies for the fetch
// engine. Strategies are safe for concurrent use.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retrying after attempt n
	// (0-indexed). Attempt 0 is the delay after the initial request failed.
	// Implementations never return a negative duration.
	Delay(attempt int) time.Duration
}

// Func adapts an ordinary function to a Strategy.
type Func func(attempt int) time.Duration

// Delay calls f(attempt).
func (f Func) Delay(attempt int) time.Duration { return f(attempt) }

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant waits Base plus a uniformly random jitter in [0, Jitter).
type Constant struct {
	Base   time.Duration
	Jitter time.Duration

	// Rand draws jitter in [0, n). Nil uses math/rand/v2.
	Rand func(n int64) int64
}

// NewConstant creates a constant backoff strategy.
func NewConstant(base, jitter time.Duration) *Constant {
	return &Constant{Base: base, Jitter: jitter}
}

// Delay returns Base + uniform_random(0, Jitter).
func (c *Constant) Delay(_ int) time.Duration {
	d := c.Base
	if c.Jitter > 0 {
		draw := rand.Int64N
		if c.Rand != nil {
			draw = c.Rand
		}
		d += time.Duration(draw(int64(c.Jitter))) //nolint:gosec // jitter intentionally uses non-crypto rand
	}
	return max(d, 0)
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential grows the delay geometrically and adds Jitter as a fixed
// offset. The result is not clamped; MaxRetries bounds it in practice.
// Delay = Base * Multiplier^attempt + Jitter.
type Exponential struct {
	Base       time.Duration
	Multiplier float64
	Jitter     time.Duration
}

// NewExponential creates an exponential backoff strategy.
func NewExponential(base time.Duration, multiplier float64, jitter time.Duration) *Exponential {
	return &Exponential{Base: base, Multiplier: multiplier, Jitter: jitter}
}

// Delay returns Base * Multiplier^attempt + Jitter.
func (e *Exponential) Delay(attempt int) time.Duration {
	scaled := float64(e.Base) * math.Pow(e.Multiplier, float64(attempt))

	var d time.Duration
	switch {
	case scaled >= math.MaxInt64:
		// Float conversion past int64 is implementation-defined.
		return time.Duration(math.MaxInt64)
	case scaled > 0:
		d = time.Duration(scaled)
	}

	if e.Jitter > 0 && d > time.Duration(math.MaxInt64)-e.Jitter {
		return time.Duration(math.MaxInt64)
	}
	return max(d+e.Jitter, 0)
}

// ──────────────────────────────────────────────────
// Default
// ──────────────────────────────────────────────────

// DefaultStrategy returns the backoff used by the client when none is
// configured: Exponential with 500ms base, multiplier 2 and 50ms jitter.
func DefaultStrategy() Strategy {
	return NewExponential(500*time.Millisecond, 2.0, 50*time.Millisecond)
}
