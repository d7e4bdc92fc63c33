package middleware

import "net/http"

// DefaultUserAgent is sent when no User-Agent override is configured.
const DefaultUserAgent = "replicate-go"

// UserAgent returns middleware that sets the User-Agent header on requests
// that do not already carry one.
func UserAgent(ua string) Middleware {
	if ua == "" {
		ua = DefaultUserAgent
	}
	return func(req *http.Request, next Handler) (*http.Response, error) {
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", ua)
		}
		return next(req)
	}
}
