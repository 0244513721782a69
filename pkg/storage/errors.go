package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrUnavailable wraps transport failures: network errors, a store
	// that is down, a cancelled context. A key miss is never an error.
	ErrUnavailable = errors.New("store unavailable")

	// ErrClosed is returned by adapters after Close.
	ErrClosed = errors.New("store closed")
)
