package middleware

import (
	"net/http"
)

// Handler performs a single HTTP round trip.
type Handler func(req *http.Request) (*http.Response, error)

// Do lets a Handler stand in wherever an http.Client-like Do method is
// expected.
func (h Handler) Do(req *http.Request) (*http.Response, error) { return h(req) }

// Middleware wraps a Handler with cross-cutting logic. It receives the
// outgoing request and the next handler to call. Middleware MUST call
// next to continue the chain (unless short-circuiting on error).
type Middleware func(req *http.Request, next Handler) (*http.Response, error)

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, tracing) executes as:
//
//	logging → recover → tracing → transport
func Chain(mws ...Middleware) Middleware {
	return func(req *http.Request, next Handler) (*http.Response, error) {
		return Wrap(next, mws...)(req)
	}
}

// Wrap returns h wrapped by mws, outermost first.
func Wrap(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		prev := h
		h = func(req *http.Request) (*http.Response, error) {
			return mw(req, prev)
		}
	}
	return h
}
