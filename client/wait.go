package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/job"
)

// WaitOption configures a single Wait call.
type WaitOption func(*waitOptions)

type waitOptions struct {
	interval time.Duration
	timeout  time.Duration
}

// WithPollInterval sets the pause between re-fetches.
func WithPollInterval(d time.Duration) WaitOption {
	return func(o *waitOptions) { o.interval = d }
}

// WithTimeout sets the wall-clock bound for the wait.
func WithTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) { o.timeout = d }
}

// Wait re-fetches j until it reaches a terminal status and returns the
// final snapshot. It does not treat failed or canceled jobs as errors;
// callers inspect the returned status.
//
// Extensions are told the job finished only when this call observed the
// transition; a job that is already terminal is returned as is.
func (c *Client) Wait(ctx context.Context, j *job.Job, opts ...WaitOption) (*job.Job, error) {
	if j == nil {
		return nil, fmt.Errorf("%w: wait: nil job", replicate.ErrValidation)
	}
	o := waitOptions{interval: c.cfg.WaitPollInterval, timeout: c.cfg.WaitTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	cur := j
	for {
		if time.Since(start) > o.timeout {
			return nil, fmt.Errorf("replicate: wait job %s: %w", j.ID, replicate.ErrTimeout)
		}
		if cur.Status.IsTerminal() {
			if cur != j {
				c.exts.EmitJobFinished(ctx, cur, time.Since(start))
			}
			return cur, nil
		}
		if err := sleep(ctx, o.interval); err != nil {
			return nil, fmt.Errorf("replicate: wait job %s: %w", j.ID, err)
		}
		next, err := c.GetJob(ctx, cur.ID)
		if err != nil {
			return nil, fmt.Errorf("replicate: wait: %w", err)
		}
		cur = next
	}
}

// WaitAll waits for every job concurrently. Results keep the order of
// jobs. The first failure cancels the remaining waits.
func (c *Client) WaitAll(ctx context.Context, jobs []*job.Job, opts ...WaitOption) ([]*job.Job, error) {
	results := make([]*job.Job, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, j := range jobs {
		g.Go(func() error {
			final, err := c.Wait(gctx, j, opts...)
			if err != nil {
				return err
			}
			results[i] = final
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
