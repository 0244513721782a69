// Package api defines the transport-agnostic types exchanged between the
// HTTP boundary and the decision engine: the inbound [Request], the closed
// set of outcome [Kind] values, and the terminal [Outcome] of a lookup.
//
// The package performs no I/O and has no dependencies outside the standard
// library. Mapping kinds to HTTP status codes happens in pkg/transport.
package api
