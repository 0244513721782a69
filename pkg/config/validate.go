package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhuss/vexgate/pkg/credential"
)

// reservedPaths are served by the health endpoints.
var reservedPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
}

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must not be negative, got %v", c.Server.RequestTimeout))
	}

	// The digest also converts raw tokens in a memory seed file, so it is
	// checked for every auth type.
	if _, err := credential.ParseDigest(c.Auth.Digest); err != nil {
		errs = append(errs, fmt.Errorf("auth.digest: %w", err))
	}
	switch c.Auth.Type {
	case "token":
		// valid
	case "jwt":
		if c.Auth.JWT.JWKSURL == "" {
			errs = append(errs, fmt.Errorf("auth.jwt.jwks_url is required when auth.type is \"jwt\""))
		}
	case "none":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"token\", \"jwt\", or \"none\", got %q", c.Auth.Type))
	}

	switch c.Storage.Type {
	case "memory":
		// valid
	case "postgres":
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
		if c.Storage.Postgres.MaxConns < 0 {
			errs = append(errs, fmt.Errorf("storage.postgres.max_conns must not be negative, got %d", c.Storage.Postgres.MaxConns))
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("storage.redis.addr is required when storage.type is \"redis\""))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\", \"postgres\", or \"redis\", got %q", c.Storage.Type))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if m := c.Observability.Metrics; m.Enabled {
		if !strings.HasPrefix(m.Path, "/") {
			errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", m.Path))
		}
		if reservedPaths[m.Path] {
			errs = append(errs, fmt.Errorf("observability.metrics.path %q is reserved", m.Path))
		}
		if m.Port < 0 || m.Port > 65535 {
			errs = append(errs, fmt.Errorf("observability.metrics.port must be in 0..65535, got %d", m.Port))
		}
		if m.Port != 0 && m.Port == c.Server.Port {
			errs = append(errs, fmt.Errorf("observability.metrics.port must differ from server.port (%d)", c.Server.Port))
		}
	}

	return errors.Join(errs...)
}

// SlogLevel parses the configured level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}
