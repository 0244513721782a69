// Package noop provides an authenticator that disables authentication.
// A deployment configured with it serves project configurations without
// token or ownership checks.
package noop

import (
	"context"

	"github.com/rhuss/vexgate/pkg/auth"
)

// Authenticator accepts every request without resolving an account.
type Authenticator struct{}

// Ensure Authenticator declares itself open at compile time.
var _ auth.Opener = (*Authenticator)(nil)

func (a *Authenticator) Authenticate(_ context.Context, _ string) auth.AuthResult {
	return auth.AuthResult{Decision: auth.Yes, Identity: &auth.Identity{}}
}

// Open reports that no authentication is performed.
func (a *Authenticator) Open() bool { return true }
