package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhuss/vexgate/pkg/api"
)

// Logging returns middleware that emits one structured log entry per
// decision. The entry carries the request ID, project id, outcome kind,
// duration and, when resolved, the caller account. Tokens are never logged.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Decider) Decider {
		return DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
			start := time.Now()

			out := next.Decide(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("project_id", req.ProjectID()),
				slog.String("outcome", out.Kind.String()),
				slog.Duration("duration", time.Since(start)),
			}
			if out.AccountID != "" {
				attrs = append(attrs, slog.String("account", out.AccountID))
			}

			if out.Kind == api.KindInternalError {
				if out.Err != nil {
					attrs = append(attrs, slog.String("error", out.Err.Error()))
				}
				logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
			}

			return out
		})
	}
}
