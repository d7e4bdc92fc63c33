package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging returns middleware that logs each round trip at debug level and
// transport failures at warn level.
func Logging(logger *slog.Logger) Middleware {
	return func(req *http.Request, next Handler) (*http.Response, error) {
		start := time.Now()
		resp, err := next(req)
		elapsed := time.Since(start)

		if err != nil {
			logger.Warn("http request failed",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
			return resp, err
		}

		logger.Debug("http request",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", elapsed),
		)
		return resp, nil
	}
}
