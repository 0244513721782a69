// Package jwt provides a JWT/OIDC authenticator that validates
// bearer tokens against a JWKS (JSON Web Key Set) endpoint.
//
// It supports RSA-signed JWTs with optional issuer and audience checks.
// The account id is read from a configurable claim.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/vexgate/pkg/auth"
	"github.com/rhuss/vexgate/pkg/credential"
	"github.com/rhuss/vexgate/pkg/debug"
)

// Config holds the JWT authenticator configuration.
type Config struct {
	// Issuer is the expected JWT issuer (iss claim). If empty, issuer is not validated.
	Issuer string

	// Audience is the expected JWT audience (aud claim). If empty, audience is not validated.
	Audience string

	// JWKSURL is the URL to fetch the JSON Web Key Set for signature verification.
	JWKSURL string

	// AccountClaim is the JWT claim used as the account id. Default: "sub".
	AccountClaim string

	// CacheTTL controls how long JWKS keys are cached. Default: 1 hour.
	CacheTTL time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// If nil, a client with a 10 second timeout is used.
	HTTPClient *http.Client
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.AccountClaim == "" {
		c.AccountClaim = "sub"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 1 * time.Hour
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
}

// errJWKSUnavailable marks failures to obtain the key set, as opposed to
// a key set that does not contain the requested kid.
var errJWKSUnavailable = errors.New("JWKS unavailable")

// Authenticator validates JWT bearer tokens against a JWKS endpoint.
type Authenticator struct {
	config Config
	keys   *keySet
}

// New creates a JWT authenticator with the given configuration.
func New(cfg Config) *Authenticator {
	cfg.applyDefaults()
	return &Authenticator{
		config: cfg,
		keys:   newKeySet(cfg.JWKSURL, cfg.CacheTTL, cfg.HTTPClient),
	}
}

// Authenticate extracts a bearer token from the Authorization header value,
// validates it as a JWT, and returns the account on success.
//
// Decision outcomes:
//   - Abstain: no bearer token (including an empty one)
//   - No: bearer token present but invalid (expired, wrong issuer, bad signature, etc.)
//   - Fail: the JWKS endpoint could not be reached
//   - Yes: valid JWT carrying a non-empty account claim
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) auth.AuthResult {
	tokenStr, ok := credential.Extract(authorization)
	if !ok || tokenStr == "" {
		return auth.Missing()
	}

	// Set when the key set cannot be fetched; reported as Fail, not No.
	var fetchErr error
	token, err := jwtlib.Parse(tokenStr, func(token *jwtlib.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}

		key, err := a.keys.key(ctx, kid)
		if err != nil {
			if errors.Is(err, errJWKSUnavailable) {
				fetchErr = err
			}
			return nil, fmt.Errorf("fetching JWKS key for kid %q: %w", kid, err)
		}

		return key, nil
	}, a.parserOptions()...)
	if fetchErr != nil {
		slog.Warn("JWKS fetch failed", "url", a.config.JWKSURL, "error", fetchErr)
		return auth.Failed(fetchErr)
	}
	if err != nil {
		debug.Log("auth", "JWT validation failed", "error", err)
		return auth.Reject(fmt.Errorf("%w: %w", auth.ErrInvalidToken, err))
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return auth.Reject(fmt.Errorf("%w: invalid JWT claims", auth.ErrInvalidToken))
	}

	accountID := claimString(claims, a.config.AccountClaim)
	if accountID == "" {
		return auth.Reject(fmt.Errorf("%w: JWT missing %q claim", auth.ErrInvalidToken, a.config.AccountClaim))
	}

	return auth.Accept(accountID)
}

// HealthCheck verifies the JWKS endpoint can be fetched.
func (a *Authenticator) HealthCheck(ctx context.Context) error {
	return a.keys.refresh(ctx)
}

// parserOptions builds JWT parser options based on the configuration.
func (a *Authenticator) parserOptions() []jwtlib.ParserOption {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	}

	if a.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(a.config.Issuer))
	}

	if a.config.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(a.config.Audience))
	}

	return opts
}

// claimString returns the claim as a string, or "" when it is missing or
// not a string.
func claimString(claims jwtlib.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
