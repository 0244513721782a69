package transport

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/rhuss/vexgate/pkg/api"
	"github.com/rhuss/vexgate/pkg/observability"
)

// Recovery returns middleware that catches panics in the decider and
// converts them to internal error outcomes. The server continues to
// accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next Decider) Decider {
		return DeciderFunc(func(ctx context.Context, req api.Request) (out api.Outcome) {
			defer func() {
				if r := recover(); r != nil {
					observability.PanicsRecoveredTotal.Inc()
					slog.ErrorContext(ctx, "panic recovered",
						"request_id", RequestIDFromContext(ctx),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
					out = api.Internal(fmt.Errorf("panic: %v", r))
				}
			}()
			return next.Decide(ctx, req)
		})
	}
}
