package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/replicate/id"
)

// tracerName is the instrumentation scope name for client tracing.
const tracerName = "github.com/xraph/replicate"

// Tracing returns middleware that wraps each round trip in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop
// tracer is used and this middleware becomes a pass-through.
//
// Span attributes include: http.request.method, url.full, server.address,
// replicate.request_id (when the request carries a valid X-Request-Id) and
// http.response.status_code. Transport failures
// and 4xx/5xx responses set the span status to codes.Error.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(req *http.Request, next Handler) (*http.Response, error) {
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("server.address", req.URL.Host),
		}
		if rid, err := id.ParseRequestID(req.Header.Get("X-Request-Id")); err == nil {
			attrs = append(attrs, attribute.String("replicate.request_id", rid.String()))
		}

		ctx, span := tracer.Start(req.Context(), "replicate.http.request",
			trace.WithAttributes(attrs...),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		defer span.End()

		resp, err := next(req.WithContext(ctx))
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case resp.StatusCode >= http.StatusBadRequest:
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		default:
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			span.SetStatus(codes.Ok, "")
		}

		return resp, err
	}
}
