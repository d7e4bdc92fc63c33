package client

import (
	"context"

	"github.com/xraph/replicate/id"
)

type requestIDKey struct{}

// ContextWithRequestID makes Do send rid as the X-Request-Id of requests
// made with the returned context, so callers can correlate their own logs.
// A Nil rid is ignored.
func ContextWithRequestID(ctx context.Context, rid id.ID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// requestIDFrom returns the caller's request ID or a fresh one.
func requestIDFrom(ctx context.Context) id.ID {
	if rid, ok := ctx.Value(requestIDKey{}).(id.ID); ok && !rid.IsNil() {
		return rid
	}
	return id.NewRequestID()
}
