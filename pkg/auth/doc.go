// Package auth resolves the caller's account from the Authorization header.
//
// Each Authenticator returns one of four decisions: Yes (account resolved),
// No (a bearer token was presented but did not resolve), Abstain (no usable
// bearer token), or Fail (the backing store could not be consulted). Exactly
// one strategy is configured per deployment; there is no chain, so a No is
// always terminal.
package auth
