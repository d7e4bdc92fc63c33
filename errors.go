package replicate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// Construction errors.
	ErrNoToken = errors.New("replicate: no auth token provided")

	// Caller-fixable input errors. Never retried.
	ErrValidation = errors.New("replicate: validation failed")

	// Malformed JSON, invalid stream event data or an unknown status value.
	ErrDecode = errors.New("replicate: decode failed")

	// Orchestrator wall-clock bound exceeded.
	ErrTimeout = errors.New("replicate: timed out")

	// Job state errors.
	ErrStreamUnavailable = errors.New("replicate: streaming not supported or not enabled for this job")
	ErrNoOutput          = errors.New("replicate: job succeeded but no output available")
	ErrUnexpectedStatus  = errors.New("replicate: unexpected job status")
)

// APIError is returned when the service answers with a non-success status
// after retries are exhausted. Fields mirror the service's problem schema;
// all of them are optional on the wire.
type APIError struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// NewAPIError builds an APIError from a response status and body. Bodies
// that do not parse as the problem schema become a generic detail.
func NewAPIError(statusCode int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		apiErr = APIError{Detail: fmt.Sprintf("Unknown error: %q", string(body))}
	}
	if apiErr.Status == 0 {
		apiErr.Status = statusCode
	}
	return &apiErr
}

func (e *APIError) Error() string {
	var parts []string
	for _, p := range []string{e.Type, e.Title, e.Detail} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	msg := "unknown error"
	if len(parts) > 0 {
		msg = strings.Join(parts, ": ")
	}
	if e.Instance != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Instance)
	}
	return fmt.Sprintf("replicate: api error %d: %s", e.Status, msg)
}

// TransportError wraps connection, DNS and read failures. The fetch engine
// surfaces these immediately without retrying.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("replicate: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// JobError reports a job that reached the failed status. Payload is the
// service-reported error value, kept as decoded.
type JobError struct {
	JobID   string
	Payload any
	Logs    string
}

func (e *JobError) Error() string {
	return fmt.Sprintf("replicate: job %s failed: %s", e.JobID, describePayload(e.Payload))
}

func describePayload(v any) string {
	switch p := v.(type) {
	case nil:
		return "unknown error"
	case string:
		return p
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Sprint(p)
		}
		return string(raw)
	}
}
