// Package middleware provides composable HTTP round-trip middleware for the
// Replicate client.
//
// A [Middleware] wraps a [Handler] and can inspect or modify the outgoing
// request and the response. The client runs its chain once per attempt,
// so retried requests are logged, traced and measured individually.
// Stream connections pass through the same chain.
//
// Built-in middleware:
//   - [Logging]: debug log per round trip, warn on transport failure
//   - [Recover]: converts panics in custom transports into errors
//   - [UserAgent]: sets a default User-Agent header
//   - [Tracing]: OpenTelemetry span per round trip
//   - [Metrics]: OpenTelemetry duration histogram and request counter
//
// Compose middleware with [Chain]:
//
//	c, err := client.New(
//	    client.WithMiddleware(
//	        middleware.Logging(logger),
//	        middleware.Tracing(),
//	        middleware.Metrics(),
//	    ),
//	)
package middleware
