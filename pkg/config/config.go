// Package config provides unified configuration for the vexgate server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (VEXGATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the vexgate server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 10s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 10s
	RequestTimeout  time.Duration `yaml:"request_timeout"`  // default: 10s, 0 disables
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// EngineConfig holds decision engine settings.
type EngineConfig struct {
	// ParallelLookup fetches the project record while the account is
	// still being resolved.
	ParallelLookup bool `yaml:"parallel_lookup"`
}

// AuthConfig selects how bearer tokens are resolved to accounts.
type AuthConfig struct {
	Type   string    `yaml:"type"`   // "token", "jwt" or "none", default: "token"
	Digest string    `yaml:"digest"` // "sha256" or "raw", default: "sha256"
	JWT    JWTConfig `yaml:"jwt"`
}

// JWTConfig holds settings for type=jwt.
type JWTConfig struct {
	JWKSURL      string        `yaml:"jwks_url"`
	Issuer       string        `yaml:"issuer"`
	Audience     string        `yaml:"audience"`
	AccountClaim string        `yaml:"account_claim"` // default: "sub"
	CacheTTL     time.Duration `yaml:"cache_ttl"`     // default: 1h
}

// StorageConfig holds credential and project store settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "postgres" or "redis", default: "memory"
	Memory   MemoryConfig   `yaml:"memory"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

// MemoryConfig holds in-memory store settings.
type MemoryConfig struct {
	SeedFile string `yaml:"seed_file"` // optional YAML fixture
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr             string `yaml:"addr"`
	Password         string `yaml:"password"`
	PasswordFile     string `yaml:"password_file"` // _file variant for password
	DB               int    `yaml:"db"`
	CredentialPrefix string `yaml:"credential_prefix"` // default: "credential:"
	ProjectPrefix    string `yaml:"project_prefix"`    // default: "project:"
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn" or "error", default: "info"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories, VEXGATE_DEBUG wins
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
	Port    int    `yaml:"port"`    // 0 serves metrics on the main listener
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Type:   "token",
			Digest: "sha256",
			JWT: JWTConfig{
				AccountClaim: "sub",
				CacheTTL:     time.Hour,
			},
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
			Redis: RedisConfig{
				CredentialPrefix: "credential:",
				ProjectPrefix:    "project:",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
