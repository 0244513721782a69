package postgres

import "time"

// Config sizes the read pool shared by the credential and project lookups.
type Config struct {
	// DSN is a libpq connection string or URL.
	DSN string

	// MaxConns caps open connections. Zero means 10.
	MaxConns int32

	// MinConns is the number of idle connections kept open. Zero means 2,
	// clamped to MaxConns.
	MinConns int32

	// MaxConnLifetime recycles connections after this age. Zero means 5m.
	MaxConnLifetime time.Duration

	// MigrateOnStart applies embedded migrations before serving.
	MigrateOnStart bool
}

func (c *Config) defaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	c.MinConns = min(c.MinConns, c.MaxConns)
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = 5 * time.Minute
	}
}
