// Package memory provides an in-memory implementation of the storage
// contracts for tests and single-node development deployments. Entries are
// loaded once from a seed file at startup and lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/rhuss/vexgate/pkg/storage"
)

// Store is an in-memory credential and project store.
type Store struct {
	mu          sync.RWMutex
	credentials map[string]string
	projects    map[string]storage.Record
	closed      bool
}

// Ensure Store implements storage.Backend at compile time.
var _ storage.Backend = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		credentials: make(map[string]string),
		projects:    make(map[string]storage.Record),
	}
}

// PutCredential registers accountID under the lookup key. Used by seeding
// and tests; the gateway itself never writes.
func (s *Store) PutCredential(key, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[key] = accountID
}

// PutProject registers a project record. The record's pointers are copied
// so later changes by the caller do not leak into the store.
func (s *Store) PutProject(projectID string, rec storage.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectID] = copyRecord(rec)
}

// Get returns the account stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, storage.ErrClosed
	}
	accountID, ok := s.credentials[key]
	return accountID, ok, nil
}

// GetWithMetadata returns the project record for projectID, or an empty
// Record when the project does not exist.
func (s *Store) GetWithMetadata(_ context.Context, projectID string) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.Record{}, storage.ErrClosed
	}
	return copyRecord(s.projects[projectID]), nil
}

// Len returns the number of credentials and projects held.
func (s *Store) Len() (credentials, projects int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.credentials), len(s.projects)
}

// HealthCheck always succeeds for an open in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrClosed
	}
	return nil
}

// Close marks the store closed; subsequent reads fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyRecord(rec storage.Record) storage.Record {
	var out storage.Record
	if rec.Value != nil {
		v := *rec.Value
		out.Value = &v
	}
	if rec.Owner != nil {
		o := *rec.Owner
		out.Owner = &o
	}
	return out
}
