package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/replicate"
)

// Input is the open, arbitrarily nested job input.
type Input map[string]any

// Source records where a job was submitted from.
type Source string

const (
	SourceWeb Source = "web"
	SourceAPI Source = "api"
)

// URL keys found in Job.URLs.
const (
	URLGet    = "get"
	URLCancel = "cancel"
	URLStream = "stream"
)

// Metrics holds optional timing and throughput figures reported by the
// service once a job has run.
type Metrics struct {
	PredictTime      *float64 `json:"predict_time,omitempty"`
	TotalTime        *float64 `json:"total_time,omitempty"`
	InputTokenCount  *int     `json:"input_token_count,omitempty"`
	OutputTokenCount *int     `json:"output_token_count,omitempty"`
	TimeToFirstToken *float64 `json:"time_to_first_token,omitempty"`
	TokensPerSecond  *float64 `json:"tokens_per_second,omitempty"`
}

// Job represents one remote computation run.
type Job struct {
	ID                  string            `json:"id"`
	Status              Status            `json:"status"`
	Model               string            `json:"model,omitempty"`
	Version             string            `json:"version,omitempty"`
	Input               Input             `json:"input"`
	Output              any               `json:"output,omitempty"`
	Source              Source            `json:"source,omitempty"`
	Error               any               `json:"error,omitempty"`
	Logs                string            `json:"logs,omitempty"`
	Metrics             *Metrics          `json:"metrics,omitempty"`
	Webhook             string            `json:"webhook,omitempty"`
	WebhookEventsFilter []WebhookEvent    `json:"webhook_events_filter,omitempty"`
	URLs                map[string]string `json:"urls,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	StartedAt           *time.Time        `json:"started_at,omitempty"`
	CompletedAt         *time.Time        `json:"completed_at,omitempty"`
}

// UnmarshalJSON decodes a job and rejects a missing or unknown status.
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: missing or unknown job status", replicate.ErrDecode)
	}
	*j = Job(p)
	return nil
}

// StreamURL returns the "stream" URL, if the service provided one.
func (j *Job) StreamURL() (string, bool) {
	u, ok := j.URLs[URLStream]
	return u, ok && u != ""
}

// Progress parses the most recent progress line out of the job logs.
func (j *Job) Progress() (Progress, bool) {
	return ParseProgress(j.Logs)
}
