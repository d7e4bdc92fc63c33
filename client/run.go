package client

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/identifier"
	"github.com/xraph/replicate/job"
)

// Run creates a job for ident ("owner/name" or "owner/name:version"),
// polls it until it finishes and returns its output.
//
// A failed job yields *replicate.JobError. Polling past the configured run
// timeout yields replicate.ErrTimeout.
func (c *Client) Run(ctx context.Context, ident string, input job.Input, webhook *job.Webhook) (any, error) {
	start := time.Now()

	j, err := c.submit(ctx, ident, input, webhook, false)
	if err != nil {
		return nil, fmt.Errorf("replicate: run %s: submit: %w", ident, err)
	}

	for !j.Status.IsTerminal() {
		if time.Since(start) > c.cfg.RunTimeout {
			return nil, fmt.Errorf("replicate: run %s: job %s still %s after %s: %w",
				ident, j.ID, j.Status, c.cfg.RunTimeout, replicate.ErrTimeout)
		}
		if err := sleep(ctx, c.cfg.RunPollInterval); err != nil {
			return nil, fmt.Errorf("replicate: run %s: poll job %s: %w", ident, j.ID, err)
		}
		next, err := c.GetJob(ctx, j.ID)
		if err != nil {
			return nil, fmt.Errorf("replicate: run %s: poll: %w", ident, err)
		}
		j = next
	}

	c.exts.EmitJobFinished(ctx, j, time.Since(start))

	switch j.Status {
	case job.StatusSucceeded:
		if j.Output == nil {
			return nil, fmt.Errorf("replicate: run %s: job %s: %w", ident, j.ID, replicate.ErrNoOutput)
		}
		return j.Output, nil
	case job.StatusFailed:
		return nil, &replicate.JobError{JobID: j.ID, Payload: j.Error, Logs: j.Logs}
	default:
		return nil, fmt.Errorf("replicate: run %s: job %s: %w: %s (logs: %q)",
			ident, j.ID, replicate.ErrUnexpectedStatus, j.Status, j.Logs)
	}
}

// submit creates a job by version when ident carries one, otherwise by
// model name.
func (c *Client) submit(ctx context.Context, ident string, input job.Input, webhook *job.Webhook, stream bool) (*job.Job, error) {
	parsed, err := identifier.Parse(ident)
	if err != nil {
		return nil, err
	}

	p := CreateParams{Input: input, Stream: stream}
	if parsed.HasVersion() {
		p.Version = parsed.Version
	} else {
		p.Model = parsed.Model()
	}
	if webhook != nil {
		p.Webhook = webhook.URL
		p.WebhookEventsFilter = webhook.Events
	}

	return c.CreateJob(ctx, p)
}
