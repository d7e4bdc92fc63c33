package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/id"
	"github.com/xraph/replicate/job"
	"github.com/xraph/replicate/stream"
)

// Stream creates a streaming job for ident and starts a pump on its
// event stream. Close the returned pump when done with it.
func (c *Client) Stream(ctx context.Context, ident string, input job.Input, webhook *job.Webhook) (*stream.Pump, error) {
	j, err := c.submit(ctx, ident, input, webhook, true)
	if err != nil {
		return nil, fmt.Errorf("replicate: stream %s: submit: %w", ident, err)
	}
	return c.StreamJob(ctx, j, nil)
}

// StreamJob starts a pump on an existing job's stream URL. When lastEvent
// is set the stream resumes after it. The pump runs until the stream
// reports done, ctx is canceled or the pump is closed.
func (c *Client) StreamJob(ctx context.Context, j *job.Job, lastEvent *stream.Event) (*stream.Pump, error) {
	url, ok := j.StreamURL()
	if !ok {
		return nil, fmt.Errorf("replicate: stream job %s: %w", j.ID, replicate.ErrStreamUnavailable)
	}

	sessionID := id.NewStreamID().String()
	c.logger.Debug("starting stream",
		slog.String("job_id", j.ID),
		slog.String("session_id", sessionID),
	)

	jobID := j.ID
	p := stream.Start(ctx, c.send, url,
		stream.WithLastEvent(lastEvent),
		stream.WithLogger(c.logger),
		stream.WithSessionID(sessionID),
		stream.WithBufferSize(c.cfg.StreamBufferSize),
		stream.WithReconnectDelay(c.cfg.StreamReconnectDelay),
		stream.WithReconnectHook(func(attempt int, err error) {
			c.exts.EmitStreamReconnecting(ctx, jobID, attempt, err)
		}),
	)
	return p, nil
}
