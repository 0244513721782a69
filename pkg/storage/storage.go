package storage

import (
	"context"
	"fmt"
)

// Record is a project entry. Value and Owner are independent: a project can
// have its owner recorded before any configuration has been published, in
// which case Owner is set and Value is nil. A missing key yields a Record
// with both fields nil.
type Record struct {
	Value *string
	Owner *string
}

// NewRecord builds a Record with both fields present.
func NewRecord(value, owner string) Record {
	return Record{Value: &value, Owner: &owner}
}

// HasValue reports whether a configuration value is present.
func (r Record) HasValue() bool { return r.Value != nil }

// OwnedBy reports whether the owner metadata is present and exactly equal
// to accountID.
func (r Record) OwnedBy(accountID string) bool {
	return r.Owner != nil && *r.Owner == accountID
}

// CredentialStore resolves lookup keys to account identifiers.
type CredentialStore interface {
	// Get returns the account stored under key. found is false on a miss;
	// err is non-nil only for transport failures.
	Get(ctx context.Context, key string) (accountID string, found bool, err error)
}

// ProjectStore reads project records.
type ProjectStore interface {
	// GetWithMetadata returns the value and owner metadata of a project in
	// one read. A missing project is an empty Record, not an error.
	GetWithMetadata(ctx context.Context, projectID string) (Record, error)
}

// HealthChecker is implemented by adapters that can verify connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Backend is a store adapter that serves both contracts.
type Backend interface {
	CredentialStore
	ProjectStore
	HealthChecker
	Close() error
}

// Unavailable wraps a transport error so callers can match ErrUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
