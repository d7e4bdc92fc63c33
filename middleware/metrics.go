package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for client metrics.
const meterName = "github.com/xraph/replicate"

// Metrics returns middleware that records per-request metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - replicate.http.duration (Float64Histogram): round-trip time in seconds
//   - replicate.http.requests (Int64Counter): total round trips
//
// Both carry the attributes method, status_code (0 on transport failure)
// and status ("ok" or "error").
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	duration, dErr := meter.Float64Histogram(
		"replicate.http.duration",
		metric.WithDescription("Duration of HTTP round trips in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	requests, rErr := meter.Int64Counter(
		"replicate.http.requests",
		metric.WithDescription("Total number of HTTP round trips"),
		metric.WithUnit("{request}"),
	)
	_ = rErr // noop fallback guaranteed by OTel API contract

	return func(req *http.Request, next Handler) (*http.Response, error) {
		start := time.Now()
		resp, err := next(req)
		elapsed := time.Since(start).Seconds()

		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		status := "ok"
		if err != nil || code >= http.StatusBadRequest {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("method", req.Method),
			attribute.Int("status_code", code),
			attribute.String("status", status),
		)

		ctx := req.Context()
		duration.Record(ctx, elapsed, attrs)
		requests.Add(ctx, 1, attrs)

		return resp, err
	}
}
