// Package storage defines the two narrow key-value contracts the gateway
// reads from, plus helpers shared across adapters.
//
// A CredentialStore maps a lookup key (a raw bearer token or its digest)
// to an account identifier. A ProjectStore maps a project identifier to a
// Record holding the configuration value and the owner account stored as
// the record's metadata. Adapters live in the memory, postgres and redis
// subpackages; each implements both contracts.
//
// The gateway never writes through these interfaces.
package storage
