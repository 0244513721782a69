package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/rhuss/vexgate/pkg/api"
)

// RequestIDHeader is the header used to propagate request IDs.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID attaches id to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns middleware that makes sure every decision runs with a
// request ID. The HTTP adapter normally sets one from X-Request-ID; other
// callers get a fresh one.
func RequestID() Middleware {
	return func(next Decider) Decider {
		return DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, NewRequestID())
			}
			return next.Decide(ctx, req)
		})
	}
}

// NewRequestID returns 16 random bytes, hex encoded.
func NewRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
