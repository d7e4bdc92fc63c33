package observability

import (
	"context"
	"time"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/replicate/ext"
	"github.com/xraph/replicate/job"
)

// Compile-time interface checks.
var (
	_ ext.Extension          = (*MetricsExtension)(nil)
	_ ext.RequestAttempted   = (*MetricsExtension)(nil)
	_ ext.JobCreated         = (*MetricsExtension)(nil)
	_ ext.JobFinished        = (*MetricsExtension)(nil)
	_ ext.StreamReconnecting = (*MetricsExtension)(nil)
)

// MetricsExtension records client-wide lifecycle metrics via go-utils
// MetricFactory. Register it with client.WithExtension to track request
// attempts, retries, job outcomes and stream reconnects.
type MetricsExtension struct {
	RequestAttempts  gu.Counter
	RequestRetries   gu.Counter
	RequestFailures  gu.Counter
	JobsCreated      gu.Counter
	JobsSucceeded    gu.Counter
	JobsFailed       gu.Counter
	JobsCanceled     gu.Counter
	StreamReconnects gu.Counter
}

// NewMetricsExtension creates a MetricsExtension using a default metrics collector.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithFactory(gu.NewMetricsCollector("replicate/observability"))
}

// NewMetricsExtensionWithFactory creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtensionWithFactory(factory gu.MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		RequestAttempts:  factory.Counter("replicate.request.attempts"),
		RequestRetries:   factory.Counter("replicate.request.retries"),
		RequestFailures:  factory.Counter("replicate.request.failures"),
		JobsCreated:      factory.Counter("replicate.job.created"),
		JobsSucceeded:    factory.Counter("replicate.job.succeeded"),
		JobsFailed:       factory.Counter("replicate.job.failed"),
		JobsCanceled:     factory.Counter("replicate.job.canceled"),
		StreamReconnects: factory.Counter("replicate.stream.reconnects"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Request hooks ───────────────────────────────────

// OnRequestAttempted implements ext.RequestAttempted. An attempt counts as
// a failure when it was the last one and did not succeed.
func (m *MetricsExtension) OnRequestAttempted(_ context.Context, a ext.Attempt) error {
	m.RequestAttempts.Inc()
	switch {
	case a.Retry:
		m.RequestRetries.Inc()
	case a.Err != nil || a.StatusCode < 200 || a.StatusCode > 299:
		m.RequestFailures.Inc()
	}
	return nil
}

// ── Job lifecycle hooks ─────────────────────────────

// OnJobCreated implements ext.JobCreated.
func (m *MetricsExtension) OnJobCreated(_ context.Context, _ *job.Job) error {
	m.JobsCreated.Inc()
	return nil
}

// OnJobFinished implements ext.JobFinished.
func (m *MetricsExtension) OnJobFinished(_ context.Context, j *job.Job, _ time.Duration) error {
	switch j.Status {
	case job.StatusSucceeded:
		m.JobsSucceeded.Inc()
	case job.StatusFailed:
		m.JobsFailed.Inc()
	case job.StatusCanceled:
		m.JobsCanceled.Inc()
	}
	return nil
}

// ── Stream hooks ────────────────────────────────────

// OnStreamReconnecting implements ext.StreamReconnecting.
func (m *MetricsExtension) OnStreamReconnecting(_ context.Context, _ string, _ int, _ error) error {
	m.StreamReconnects.Inc()
	return nil
}
