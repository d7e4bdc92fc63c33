package job_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/job"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status job.Status
		want   bool
	}{
		{job.StatusStarting, false},
		{job.StatusProcessing, false},
		{job.StatusSucceeded, true},
		{job.StatusFailed, true},
		{job.StatusCanceled, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatus_UnknownValueIsDecodeError(t *testing.T) {
	var j job.Job
	err := json.Unmarshal([]byte(`{"id":"abc","status":"exploded"}`), &j)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !errors.Is(err, replicate.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestJob_MissingStatusIsDecodeError(t *testing.T) {
	for _, raw := range []string{`{"id":"abc","input":{}}`, `{"id":"abc","status":""}`} {
		var j job.Job
		err := json.Unmarshal([]byte(raw), &j)
		if !errors.Is(err, replicate.ErrDecode) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrDecode", raw, err)
		}
	}
}

func TestJob_Decode(t *testing.T) {
	raw := `{
		"id": "ufawqhfynnddngldkgtslldrkq",
		"model": "owner/name",
		"version": "5c7d5dc6",
		"status": "succeeded",
		"input": {"prompt": "hi", "opts": {"n": 2, "tags": ["a", "b"]}},
		"output": {"result": "ok"},
		"logs": "booting\n",
		"metrics": {"predict_time": 1.5},
		"urls": {"get": "https://x/get", "stream": "https://x/stream"},
		"created_at": "2024-01-01T00:00:00Z",
		"completed_at": "2024-01-01T00:00:05Z"
	}`

	var j job.Job
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if j.Status != job.StatusSucceeded {
		t.Errorf("Status = %q, want %q", j.Status, job.StatusSucceeded)
	}
	opts, ok := j.Input["opts"].(map[string]any)
	if !ok {
		t.Fatalf("Input[opts] = %T, want nested map", j.Input["opts"])
	}
	if tags, ok := opts["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("Input[opts][tags] = %v, want 2 elements", opts["tags"])
	}
	out, ok := j.Output.(map[string]any)
	if !ok || out["result"] != "ok" {
		t.Errorf("Output = %v, want {result: ok}", j.Output)
	}
	if j.Metrics == nil || j.Metrics.PredictTime == nil || *j.Metrics.PredictTime != 1.5 {
		t.Errorf("Metrics.PredictTime = %v, want 1.5", j.Metrics)
	}
	if u, ok := j.StreamURL(); !ok || u != "https://x/stream" {
		t.Errorf("StreamURL() = %q, %v", u, ok)
	}
	if j.StartedAt != nil {
		t.Errorf("StartedAt = %v, want nil", j.StartedAt)
	}
	if j.CompletedAt == nil {
		t.Error("CompletedAt = nil, want set")
	}
}

func TestJob_StreamURLMissing(t *testing.T) {
	j := &job.Job{URLs: map[string]string{"get": "https://x/get"}}
	if _, ok := j.StreamURL(); ok {
		t.Error("StreamURL() ok = true, want false")
	}
}
