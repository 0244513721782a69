// Package engine implements the decision pipeline that turns a config read
// request into exactly one terminal outcome.
//
// The Engine runs six ordered gates: bearer token present, token resolves
// to an account, project id has the required length, project record can be
// read, caller owns the project, and a value is present. Each gate is
// terminal on failure. Authentication is checked before the project id
// shape, and ownership before existence, so a caller who does not own a
// project cannot learn whether it has a value.
//
// The account resolution strategy is an auth.Authenticator chosen at
// startup. An authenticator that declares itself open (see auth.IsOpen)
// switches the engine to no-auth mode, which runs only the project id and
// value gates.
package engine
