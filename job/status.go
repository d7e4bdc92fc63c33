package job

import (
	"encoding/json"
	"fmt"

	"github.com/xraph/replicate"
)

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusStarting means the job was accepted and is booting.
	StatusStarting Status = "starting"
	// StatusProcessing means the model is running.
	StatusProcessing Status = "processing"
	// StatusSucceeded means the job finished and Output is set.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the job errored and Error is set.
	StatusFailed Status = "failed"
	// StatusCanceled means the job was canceled before finishing.
	StatusCanceled Status = "canceled"
)

// IsTerminal reports whether no further transitions can occur.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusStarting, StatusProcessing, StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// UnmarshalJSON rejects status values outside the known set.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: status: %w", replicate.ErrDecode, err)
	}
	st := Status(raw)
	if !st.Valid() {
		return fmt.Errorf("%w: unknown job status %q", replicate.ErrDecode, raw)
	}
	*s = st
	return nil
}
