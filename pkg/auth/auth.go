package auth

import (
	"context"
	"errors"
)

// AuthDecision represents the outcome of an authentication attempt.
type AuthDecision int

const (
	// Yes means the token resolved to an account.
	Yes AuthDecision = iota

	// No means a bearer token was present but did not resolve.
	No

	// Abstain means no usable bearer token was presented.
	Abstain

	// Fail means the credential source could not be reached. The caller
	// cannot tell whether the token is valid.
	Fail
)

// String returns the lowercase decision name.
func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated when Decision is No or Fail
}

// Identity represents an authenticated caller.
type Identity struct {
	// AccountID is the opaque account identifier (non-empty).
	AccountID string
}

// Authenticator examines the Authorization header value and returns a
// decision. authorization is empty when the header is absent.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) AuthResult
}

// Sentinel errors.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrUnavailable  = errors.New("credential source unavailable")
)

// Accept returns a Yes result for accountID.
func Accept(accountID string) AuthResult {
	return AuthResult{Decision: Yes, Identity: &Identity{AccountID: accountID}}
}

// Reject returns a No result. A nil err defaults to ErrInvalidToken.
func Reject(err error) AuthResult {
	if err == nil {
		err = ErrInvalidToken
	}
	return AuthResult{Decision: No, Err: err}
}

// Missing returns an Abstain result.
func Missing() AuthResult {
	return AuthResult{Decision: Abstain, Err: ErrMissingToken}
}

// Failed returns a Fail result wrapping err with ErrUnavailable.
func Failed(err error) AuthResult {
	return AuthResult{Decision: Fail, Err: errors.Join(ErrUnavailable, err)}
}

// Opener is implemented by authenticators that disable authentication
// altogether. Callers skip token and ownership checks when Open is true.
type Opener interface {
	Open() bool
}

// IsOpen reports whether a declares that no authentication is required.
func IsOpen(a Authenticator) bool {
	o, ok := a.(Opener)
	return ok && o.Open()
}
