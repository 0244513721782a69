// Package redis provides a Redis implementation of the credential and
// project store contracts.
//
// Credentials are plain string keys holding the account id. Projects are
// hashes with an optional "value" field (the configuration) and an optional
// "owner" field (the owning account id), read together with HMGET.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rhuss/vexgate/pkg/storage"
)

// Hash fields of a project record.
const (
	FieldValue = "value"
	FieldOwner = "owner"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// CredentialPrefix is prepended to lookup keys (default "credential:").
	CredentialPrefix string

	// ProjectPrefix is prepended to project ids (default "project:").
	ProjectPrefix string

	// DialTimeout bounds connection setup (default 5s).
	DialTimeout time.Duration
}

func (c *Config) defaults() {
	if c.CredentialPrefix == "" {
		c.CredentialPrefix = "credential:"
	}
	if c.ProjectPrefix == "" {
		c.ProjectPrefix = "project:"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}

// Store is a Redis-backed credential and project store.
type Store struct {
	client *goredis.Client
	cfg    Config
}

// Ensure Store implements storage.Backend at compile time.
var _ storage.Backend = (*Store)(nil)

// New connects to Redis and verifies connectivity. Client-side retries are
// disabled; a failed read surfaces immediately as ErrUnavailable.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		MaxRetries:  -1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewFromClient wraps an existing client. Connectivity is not checked.
func NewFromClient(client *goredis.Client, cfg Config) *Store {
	cfg.defaults()
	return &Store{client: client, cfg: cfg}
}

func (s *Store) credentialKey(key string) string { return s.cfg.CredentialPrefix + key }

func (s *Store) projectKey(id string) string { return s.cfg.ProjectPrefix + id }

// Get returns the account stored under the lookup key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	accountID, err := s.client.Get(ctx, s.credentialKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storage.Unavailable("reading credential", err)
	}
	return accountID, true, nil
}

// GetWithMetadata reads the value and owner fields of a project hash in a
// single round trip. Missing fields come back as nil.
func (s *Store) GetWithMetadata(ctx context.Context, projectID string) (storage.Record, error) {
	fields, err := s.client.HMGet(ctx, s.projectKey(projectID), FieldValue, FieldOwner).Result()
	if err != nil {
		return storage.Record{}, storage.Unavailable("reading project", err)
	}
	if len(fields) != 2 {
		return storage.Record{}, storage.Unavailable("reading project",
			fmt.Errorf("unexpected HMGET reply length %d", len(fields)))
	}
	return storage.Record{
		Value: optionalString(fields[0]),
		Owner: optionalString(fields[1]),
	}, nil
}

// PutCredential stores a credential. Used by provisioning tools and tests.
func (s *Store) PutCredential(ctx context.Context, key, accountID string) error {
	if err := s.client.Set(ctx, s.credentialKey(key), accountID, 0).Err(); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	return nil
}

// PutProject replaces a project hash. Nil fields are removed.
func (s *Store) PutProject(ctx context.Context, projectID string, rec storage.Record) error {
	key := s.projectKey(projectID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		values := make(map[string]any, 2)
		if rec.Value != nil {
			values[FieldValue] = *rec.Value
		}
		if rec.Owner != nil {
			values[FieldOwner] = *rec.Owner
		}
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return nil
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
