// Package kv provides an authenticator that resolves bearer tokens through
// a credential store. The token is digested into a lookup key and the value
// stored under that key is the account id.
package kv

import (
	"context"

	"github.com/rhuss/vexgate/pkg/auth"
	"github.com/rhuss/vexgate/pkg/credential"
	"github.com/rhuss/vexgate/pkg/storage"
)

// Authenticator resolves bearer tokens against a credential store.
type Authenticator struct {
	store  storage.CredentialStore
	digest credential.Digester
}

// New creates a store-backed authenticator. A nil digester selects SHA-256.
func New(store storage.CredentialStore, digest credential.Digester) *Authenticator {
	if digest == nil {
		digest = credential.SHA256{}
	}
	return &Authenticator{store: store, digest: digest}
}

// Digest returns the digester used to build lookup keys.
func (a *Authenticator) Digest() credential.Digester { return a.digest }

// Authenticate extracts the bearer token and looks it up.
// Returns Abstain if no bearer token is present (an empty token counts as
// absent), No if the lookup misses or yields an empty account, Fail if the
// store cannot be reached, and Yes otherwise. Lookups are never retried.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) auth.AuthResult {
	token, ok := credential.Extract(authorization)
	if !ok || token == "" {
		return auth.Missing()
	}

	accountID, found, err := a.store.Get(ctx, a.digest.Digest(token))
	if err != nil {
		return auth.Failed(err)
	}
	if !found || accountID == "" {
		return auth.Reject(auth.ErrInvalidToken)
	}

	return auth.Accept(accountID)
}
