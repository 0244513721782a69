// Package transport defines the handler interface and middleware chain for
// the vexgate HTTP transport layer.
//
// The transport layer bridges HTTP clients and the decision engine. It
// reduces an incoming request to an api.Request, dispatches it to a Decider,
// and maps the resulting api.Outcome onto an HTTP status and a plain-text
// body. The mapping lives here so the core stays transport-agnostic.
//
// # Handler Interface
//
// Decider is the single contract between the transport layer and the
// engine. It returns exactly one outcome per request and never an error;
// failures are carried as api.KindInternalError outcomes.
//
// # Middleware
//
// The middleware chain wraps a Decider with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog.
package transport
