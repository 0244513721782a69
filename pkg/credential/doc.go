// Package credential extracts bearer tokens from Authorization headers and
// turns them into credential-store lookup keys.
//
// Two digest variants exist and a deployment picks exactly one:
//
//   - sha256: the lowercase hex SHA-256 of the token's UTF-8 bytes. Raw
//     bearer tokens never appear as store keys.
//   - raw: the token itself is the lookup key.
package credential
