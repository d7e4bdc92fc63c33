package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover returns middleware that recovers from panics further down the
// chain (including custom transports). Panics are converted to errors and
// logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(req *http.Request, next Handler) (resp *http.Response, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("http handler panicked",
					slog.String("method", req.Method),
					slog.String("url", req.URL.String()),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				resp = nil
				retErr = fmt.Errorf("panic in %s %s: %v", req.Method, req.URL.Path, r)
			}
		}()
		return next(req)
	}
}
