// Package observability provides a metrics extension for the Replicate
// client. The MetricsExtension implements lifecycle hooks to record
// counters for request attempts, retries, job outcomes and stream
// reconnects.
//
// For per-request tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
