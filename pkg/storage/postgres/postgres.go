// Package postgres provides a PostgreSQL implementation of the credential
// and project store contracts. It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/vexgate/pkg/storage"
)

// Store is a PostgreSQL-backed credential and project store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Backend at compile time.
var _ storage.Backend = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Get returns the account stored under the lookup key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var accountID string
	err := s.pool.QueryRow(ctx,
		"SELECT account_id FROM credentials WHERE lookup_key = $1",
		key,
	).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storage.Unavailable("querying credential", err)
	}
	return accountID, true, nil
}

// GetWithMetadata reads a project's value and owner in a single query.
func (s *Store) GetWithMetadata(ctx context.Context, projectID string) (storage.Record, error) {
	var rec storage.Record
	err := s.pool.QueryRow(ctx,
		"SELECT config_value, owner_account_id FROM project_configs WHERE project_id = $1",
		projectID,
	).Scan(&rec.Value, &rec.Owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Record{}, nil
	}
	if err != nil {
		return storage.Record{}, storage.Unavailable("querying project", err)
	}
	return rec, nil
}

// PutCredential inserts or replaces a credential. The gateway itself never
// writes; this exists for provisioning tools and tests.
func (s *Store) PutCredential(ctx context.Context, key, accountID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO credentials (lookup_key, account_id) VALUES ($1, $2)
		ON CONFLICT (lookup_key) DO UPDATE SET account_id = EXCLUDED.account_id
	`, key, accountID)
	if err != nil {
		return fmt.Errorf("upserting credential: %w", err)
	}
	return nil
}

// PutProject inserts or replaces a project record. Nil fields are stored
// as NULL.
func (s *Store) PutProject(ctx context.Context, projectID string, rec storage.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO project_configs (project_id, config_value, owner_account_id) VALUES ($1, $2, $3)
		ON CONFLICT (project_id) DO UPDATE
		SET config_value = EXCLUDED.config_value,
		    owner_account_id = EXCLUDED.owner_account_id,
		    updated_at = now()
	`, projectID, rec.Value, rec.Owner)
	if err != nil {
		return fmt.Errorf("upserting project: %w", err)
	}
	return nil
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
