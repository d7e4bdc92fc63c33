package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/job"
)

// CreateParams describes a job to create. Exactly one of Model, Version
// or Deployment must be set.
type CreateParams struct {
	// Model is "owner/name"; the service runs its latest version.
	Model string
	// Version is a model version id.
	Version string
	// Deployment is "owner/name" of a deployment.
	Deployment string

	Input job.Input

	// Webhook receives job updates. WebhookCompleted is the legacy
	// completion-only callback.
	Webhook             string
	WebhookCompleted    string
	WebhookEventsFilter []job.WebhookEvent

	// Stream asks the service to expose a stream URL for the job.
	Stream bool
}

type createBody struct {
	Input               job.Input          `json:"input"`
	Version             string             `json:"version,omitempty"`
	Webhook             string             `json:"webhook,omitempty"`
	WebhookCompleted    string             `json:"webhook_completed,omitempty"`
	WebhookEventsFilter []job.WebhookEvent `json:"webhook_events_filter,omitempty"`
	Stream              bool               `json:"stream,omitempty"`
}

// CreateJob submits a new job.
func (c *Client) CreateJob(ctx context.Context, p CreateParams) (*job.Job, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}

	body := createBody{
		Input:               p.Input,
		Version:             p.Version,
		Webhook:             p.Webhook,
		WebhookCompleted:    p.WebhookCompleted,
		WebhookEventsFilter: p.WebhookEventsFilter,
		Stream:              p.Stream,
	}
	if body.Input == nil {
		body.Input = job.Input{}
	}

	var j job.Job
	if err := c.Do(ctx, http.MethodPost, path, body, &j); err != nil {
		return nil, fmt.Errorf("replicate: create job: %w", err)
	}

	c.exts.EmitJobCreated(ctx, &j)
	return &j, nil
}

// GetJob fetches the current state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	var j job.Job
	if err := c.Do(ctx, http.MethodGet, "/predictions/"+url.PathEscape(jobID), nil, &j); err != nil {
		return nil, fmt.Errorf("replicate: get job %s: %w", jobID, err)
	}
	return &j, nil
}

// CancelJob asks the service to cancel a job and returns its new state.
func (c *Client) CancelJob(ctx context.Context, jobID string) (*job.Job, error) {
	var j job.Job
	if err := c.Do(ctx, http.MethodPost, "/predictions/"+url.PathEscape(jobID)+"/cancel", nil, &j); err != nil {
		return nil, fmt.Errorf("replicate: cancel job %s: %w", jobID, err)
	}
	return &j, nil
}

// path picks the creation endpoint for the single selector set.
func (p CreateParams) path() (string, error) {
	set := 0
	for _, s := range []string{p.Model, p.Version, p.Deployment} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return "", fmt.Errorf("%w: exactly one of model, version or deployment must be set (got %d)",
			replicate.ErrValidation, set)
	}

	switch {
	case p.Model != "":
		owner, name, err := splitOwnerName("model", p.Model)
		if err != nil {
			return "", err
		}
		return "/models/" + owner + "/" + name + "/predictions", nil
	case p.Deployment != "":
		owner, name, err := splitOwnerName("deployment", p.Deployment)
		if err != nil {
			return "", err
		}
		return "/deployments/" + owner + "/" + name + "/predictions", nil
	default:
		return "/predictions", nil
	}
}

func splitOwnerName(kind, s string) (string, string, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %s must be in the format owner/name, got %q",
			replicate.ErrValidation, kind, s)
	}
	return url.PathEscape(owner), url.PathEscape(name), nil
}
