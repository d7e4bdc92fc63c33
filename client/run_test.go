package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/replicate"
	"github.com/xraph/replicate/client"
	"github.com/xraph/replicate/job"
)

// jobServer answers job creation with the first snapshot and every poll
// with the next one, repeating the last.
type jobServer struct {
	mu        sync.Mutex
	snapshots []map[string]any
	polls     int
	created   string
	body      map[string]any
}

func (s *jobServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost {
		s.created = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&s.body)
		writeJSON(w, http.StatusCreated, s.snapshots[0])
		return
	}

	s.polls++
	n := s.polls
	if n >= len(s.snapshots) {
		n = len(s.snapshots) - 1
	}
	writeJSON(w, http.StatusOK, s.snapshots[n])
}

func (s *jobServer) state() (polls int, created string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls, s.created, s.body
}

func snapshot(status string, extra map[string]any) map[string]any {
	m := map[string]any{"id": "p1", "status": status, "input": map[string]any{}}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func fastRun() client.Option { return client.WithRunPolling(time.Millisecond, 5*time.Second) }

type finishedRecorder struct {
	mu       sync.Mutex
	statuses []job.Status
}

func (r *finishedRecorder) Name() string { return "finished-recorder" }

func (r *finishedRecorder) OnJobFinished(_ context.Context, j *job.Job, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, j.Status)
	return nil
}

// ── Run ──────────────────────────────────────────────

func TestRun_Succeeded(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{
		snapshot("starting", nil),
		snapshot("processing", nil),
		snapshot("succeeded", map[string]any{"output": map[string]any{"result": "ok"}}),
	}}
	rec := &finishedRecorder{}
	c, _ := newTestClient(t, s.handle, fastRun(), client.WithExtension(rec))

	out, err := c.Run(context.Background(), "acme/llm", job.Input{"prompt": "hi"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	m, ok := out.(map[string]any)
	if !ok || m["result"] != "ok" {
		t.Errorf("output = %#v, want {result: ok}", out)
	}
	polls, created, _ := s.state()
	if created != "/models/acme/llm/predictions" {
		t.Errorf("created via %q, want model endpoint", created)
	}
	if polls != 2 {
		t.Errorf("polls = %d, want 2", polls)
	}
	if len(rec.statuses) != 1 || rec.statuses[0] != job.StatusSucceeded {
		t.Errorf("finished hooks = %v, want [succeeded]", rec.statuses)
	}
}

func TestRun_ByVersion(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{
		snapshot("succeeded", map[string]any{"output": "done"}),
	}}
	c, _ := newTestClient(t, s.handle, fastRun())

	webhook := &job.Webhook{URL: "https://example.com/hook", Events: []job.WebhookEvent{job.WebhookCompleted}}
	out, err := c.Run(context.Background(), "acme/llm:abc123", nil, webhook)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "done" {
		t.Errorf("output = %v, want done", out)
	}
	polls, created, body := s.state()
	if created != "/predictions" {
		t.Errorf("created via %q, want /predictions", created)
	}
	if body["version"] != "abc123" {
		t.Errorf("version = %v, want abc123", body["version"])
	}
	if body["webhook"] != "https://example.com/hook" {
		t.Errorf("webhook = %v", body["webhook"])
	}
	if polls != 0 {
		t.Errorf("polls = %d, want 0 for an already finished job", polls)
	}
}

func TestRun_Failed(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{
		snapshot("starting", nil),
		snapshot("failed", map[string]any{"error": "boom", "logs": "traceback..."}),
	}}
	c, _ := newTestClient(t, s.handle, fastRun())

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)

	var jobErr *replicate.JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("err = %v, want *JobError", err)
	}
	if jobErr.Payload != "boom" || jobErr.JobID != "p1" || jobErr.Logs != "traceback..." {
		t.Errorf("JobError = %+v", jobErr)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q, want it to contain boom", err.Error())
	}
}

func TestRun_Canceled(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{
		snapshot("canceled", map[string]any{"logs": "stopped"}),
	}}
	c, _ := newTestClient(t, s.handle, fastRun())

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)
	if !errors.Is(err, replicate.ErrUnexpectedStatus) {
		t.Fatalf("err = %v, want ErrUnexpectedStatus", err)
	}
	if !strings.Contains(err.Error(), "canceled") || !strings.Contains(err.Error(), "stopped") {
		t.Errorf("Error() = %q, want status and logs", err.Error())
	}
}

func TestRun_SucceededWithoutOutput(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{snapshot("succeeded", nil)}}
	c, _ := newTestClient(t, s.handle, fastRun())

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)
	if !errors.Is(err, replicate.ErrNoOutput) {
		t.Errorf("err = %v, want ErrNoOutput", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{snapshot("processing", nil)}}
	c, _ := newTestClient(t, s.handle, client.WithRunPolling(5*time.Millisecond, 30*time.Millisecond))

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)
	if !errors.Is(err, replicate.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
	if polls, _, _ := s.state(); polls == 0 {
		t.Error("expected at least one poll before timing out")
	}
}

func TestRun_PollMissingStatusFailsFast(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, snapshot("starting", nil))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "p1", "input": map[string]any{}})
	}, fastRun())

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)
	if !errors.Is(err, replicate.ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
	if errors.Is(err, replicate.ErrTimeout) {
		t.Errorf("err = %v, want no timeout", err)
	}
}

func TestRun_InvalidIdentifier(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, statusSequence(&hits, 201), fastRun())

	for _, ident := range []string{"", "invalid", "a/b/c", "/"} {
		_, err := c.Run(context.Background(), ident, nil, nil)
		if !errors.Is(err, replicate.ErrValidation) {
			t.Errorf("Run(%q) err = %v, want ErrValidation", ident, err)
		}
	}
	if hits.Load() != 0 {
		t.Errorf("hits = %d, want 0", hits.Load())
	}
}

func TestRun_SubmitErrorNamesPhase(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "bad token"})
	}, fastRun())

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)

	var apiErr *replicate.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if !strings.Contains(err.Error(), "submit") {
		t.Errorf("Error() = %q, want submit phase", err.Error())
	}
}

func TestRun_PollErrorNamesPhase(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, snapshot("starting", nil))
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "gone"})
	}, fastRun())

	_, err := c.Run(context.Background(), "acme/llm", nil, nil)

	var apiErr *replicate.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("err = %v, want 404 APIError", err)
	}
	if !strings.Contains(err.Error(), "poll") {
		t.Errorf("Error() = %q, want poll phase", err.Error())
	}
}

// ── Wait ─────────────────────────────────────────────

func TestWait_ReturnsFinalSnapshot(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{
		snapshot("starting", nil),
		snapshot("processing", nil),
		snapshot("failed", map[string]any{"error": "boom"}),
	}}
	c, _ := newTestClient(t, s.handle)

	start := &job.Job{ID: "p1", Status: job.StatusStarting}
	final, err := c.Wait(context.Background(), start, client.WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if final.Status != job.StatusFailed {
		t.Errorf("Status = %s, want failed", final.Status)
	}
	if start.Status != job.StatusStarting {
		t.Errorf("input snapshot mutated: %s", start.Status)
	}
}

func TestWait_AlreadyTerminal(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, statusSequence(&hits, 200))

	done := &job.Job{ID: "p1", Status: job.StatusSucceeded}
	final, err := c.Wait(context.Background(), done)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if final != done {
		t.Error("expected the given snapshot back")
	}
	if hits.Load() != 0 {
		t.Errorf("hits = %d, want 0", hits.Load())
	}
}

func TestWait_AlreadyTerminalIsNotReported(t *testing.T) {
	rec := &finishedRecorder{}
	c, _ := newTestClient(t, statusSequence(new(atomic.Int32), 200), client.WithExtension(rec))

	if _, err := c.Wait(context.Background(), &job.Job{ID: "p1", Status: job.StatusSucceeded}); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.statuses) != 0 {
		t.Errorf("finished events = %v, want none", rec.statuses)
	}
}

func TestWait_ObservedTransitionReportedOnce(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{
		snapshot("starting", nil),
		snapshot("succeeded", map[string]any{"output": "ok"}),
	}}
	rec := &finishedRecorder{}
	c, _ := newTestClient(t, s.handle, client.WithExtension(rec))

	start := &job.Job{ID: "p1", Status: job.StatusStarting}
	final, err := c.Wait(context.Background(), start, client.WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// Waiting again on the terminal snapshot must not count it twice.
	if _, err := c.Wait(context.Background(), final); err != nil {
		t.Fatalf("second Wait: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.statuses) != 1 || rec.statuses[0] != job.StatusSucceeded {
		t.Errorf("finished events = %v, want [succeeded]", rec.statuses)
	}
}

func TestWait_NilJob(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, statusSequence(&hits, 200))

	_, err := c.Wait(context.Background(), nil)
	if !errors.Is(err, replicate.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if hits.Load() != 0 {
		t.Errorf("hits = %d, want 0", hits.Load())
	}
}

func TestWait_Timeout(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{snapshot("processing", nil)}}
	c, _ := newTestClient(t, s.handle)

	_, err := c.Wait(context.Background(), &job.Job{ID: "p1", Status: job.StatusProcessing},
		client.WithPollInterval(5*time.Millisecond),
		client.WithTimeout(20*time.Millisecond),
	)
	if !errors.Is(err, replicate.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	s := &jobServer{snapshots: []map[string]any{snapshot("processing", nil)}}
	c, _ := newTestClient(t, s.handle)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Wait(ctx, &job.Job{ID: "p1", Status: job.StatusProcessing})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWaitAll(t *testing.T) {
	var polls sync.Map
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/predictions/")
		n, _ := polls.LoadOrStore(jobID, new(atomic.Int32))
		status := "processing"
		if n.(*atomic.Int32).Add(1) >= 2 {
			status = "succeeded"
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": jobID, "status": status, "output": jobID})
	})

	jobs := []*job.Job{
		{ID: "a", Status: job.StatusStarting},
		{ID: "b", Status: job.StatusProcessing},
		{ID: "c", Status: job.StatusSucceeded},
	}
	final, err := c.WaitAll(context.Background(), jobs, client.WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("WaitAll: %v", err)
	}
	if len(final) != 3 {
		t.Fatalf("results = %d, want 3", len(final))
	}
	for i, j := range final {
		if j.ID != jobs[i].ID || j.Status != job.StatusSucceeded {
			t.Errorf("result[%d] = %s %s, want %s succeeded", i, j.ID, j.Status, jobs[i].ID)
		}
	}
}

func TestWaitAll_FirstErrorWins(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "missing"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "good", "status": "processing"})
	})

	jobs := []*job.Job{
		{ID: "good", Status: job.StatusProcessing},
		{ID: "bad", Status: job.StatusProcessing},
	}
	_, err := c.WaitAll(context.Background(), jobs, client.WithPollInterval(time.Millisecond))

	var apiErr *replicate.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Errorf("err = %v, want 404 APIError", err)
	}
}
