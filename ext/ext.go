package ext

import (
	"context"
	"time"

	"github.com/xraph/replicate/id"
	"github.com/xraph/replicate/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// Attempt describes one HTTP attempt made by the fetch engine.
type Attempt struct {
	// RequestID is shared by every attempt of one logical request.
	RequestID id.ID
	Method    string
	URL       string

	// Number is the 0-indexed attempt count.
	Number int

	// StatusCode is zero when the attempt failed at the transport level.
	StatusCode int

	// Retry reports whether another attempt follows, after Delay.
	Retry bool
	Delay time.Duration

	Elapsed time.Duration
	Err     error
}

// ──────────────────────────────────────────────────
// Request hooks
// ──────────────────────────────────────────────────

// RequestAttempted is called after every HTTP attempt, successful or not.
type RequestAttempted interface {
	OnRequestAttempted(ctx context.Context, a Attempt) error
}

// ──────────────────────────────────────────────────
// Job lifecycle hooks
// ──────────────────────────────────────────────────

// JobCreated is called after the service accepted a new job.
type JobCreated interface {
	OnJobCreated(ctx context.Context, j *job.Job) error
}

// JobFinished is called when Run or Wait observes a terminal status.
type JobFinished interface {
	OnJobFinished(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Stream hooks
// ──────────────────────────────────────────────────

// StreamReconnecting is called before a stream pump reopens its connection.
type StreamReconnecting interface {
	OnStreamReconnecting(ctx context.Context, jobID string, attempt int, err error) error
}
