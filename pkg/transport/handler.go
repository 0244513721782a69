package transport

import (
	"context"

	"github.com/rhuss/vexgate/pkg/api"
)

// Decider runs the decision pipeline for one request. Implementations must
// be safe for concurrent use and must return exactly one outcome.
type Decider interface {
	Decide(ctx context.Context, req api.Request) api.Outcome
}

// DeciderFunc is an adapter that allows using an ordinary function as a
// Decider.
type DeciderFunc func(ctx context.Context, req api.Request) api.Outcome

// Decide calls f(ctx, req).
func (f DeciderFunc) Decide(ctx context.Context, req api.Request) api.Outcome {
	return f(ctx, req)
}
