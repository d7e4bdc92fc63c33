package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/replicate/job"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type requestAttemptedEntry struct {
	name string
	hook RequestAttempted
}

type jobCreatedEntry struct {
	name string
	hook JobCreated
}

type jobFinishedEntry struct {
	name string
	hook JobFinished
}

type streamReconnectingEntry struct {
	name string
	hook StreamReconnecting
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. Extensions are type-cached at registration so emit calls only
// iterate over extensions that implement the relevant hook.
//
// Register all extensions before the registry is shared; emit methods may
// then be called concurrently.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	requestAttempted   []requestAttemptedEntry
	jobCreated         []jobCreatedEntry
	jobFinished        []jobFinishedEntry
	streamReconnecting []streamReconnectingEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(RequestAttempted); ok {
		r.requestAttempted = append(r.requestAttempted, requestAttemptedEntry{name, h})
	}
	if h, ok := e.(JobCreated); ok {
		r.jobCreated = append(r.jobCreated, jobCreatedEntry{name, h})
	}
	if h, ok := e.(JobFinished); ok {
		r.jobFinished = append(r.jobFinished, jobFinishedEntry{name, h})
	}
	if h, ok := e.(StreamReconnecting); ok {
		r.streamReconnecting = append(r.streamReconnecting, streamReconnectingEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitRequestAttempted notifies all extensions that implement RequestAttempted.
func (r *Registry) EmitRequestAttempted(ctx context.Context, a Attempt) {
	for _, e := range r.requestAttempted {
		if err := e.hook.OnRequestAttempted(ctx, a); err != nil {
			r.logHookError("OnRequestAttempted", e.name, err)
		}
	}
}

// EmitJobCreated notifies all extensions that implement JobCreated.
func (r *Registry) EmitJobCreated(ctx context.Context, j *job.Job) {
	for _, e := range r.jobCreated {
		if err := e.hook.OnJobCreated(ctx, j); err != nil {
			r.logHookError("OnJobCreated", e.name, err)
		}
	}
}

// EmitJobFinished notifies all extensions that implement JobFinished.
func (r *Registry) EmitJobFinished(ctx context.Context, j *job.Job, elapsed time.Duration) {
	for _, e := range r.jobFinished {
		if err := e.hook.OnJobFinished(ctx, j, elapsed); err != nil {
			r.logHookError("OnJobFinished", e.name, err)
		}
	}
}

// EmitStreamReconnecting notifies all extensions that implement StreamReconnecting.
func (r *Registry) EmitStreamReconnecting(ctx context.Context, jobID string, attempt int, err error) {
	for _, e := range r.streamReconnecting {
		if hookErr := e.hook.OnStreamReconnecting(ctx, jobID, attempt, err); hookErr != nil {
			r.logHookError("OnStreamReconnecting", e.name, hookErr)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors are never propagated to the caller.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
