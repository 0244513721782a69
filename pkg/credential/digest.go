package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digester derives the credential-store lookup key from a bearer token.
type Digester interface {
	// Name is the configuration name of the variant.
	Name() string

	// Digest returns the lookup key for token. It must be deterministic.
	Digest(token string) string
}

// Digest variant names accepted by ParseDigest.
const (
	DigestSHA256 = "sha256"
	DigestRaw    = "raw"
)

// SHA256 hashes tokens with SHA-256 and renders the digest as 64 lowercase
// hex characters.
type SHA256 struct{}

func (SHA256) Name() string { return DigestSHA256 }

func (SHA256) Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Raw uses the token itself as the lookup key.
type Raw struct{}

func (Raw) Name() string { return DigestRaw }

func (Raw) Digest(token string) string { return token }

// ParseDigest returns the Digester registered under name.
func ParseDigest(name string) (Digester, error) {
	switch name {
	case DigestSHA256:
		return SHA256{}, nil
	case DigestRaw:
		return Raw{}, nil
	default:
		return nil, fmt.Errorf("unknown digest %q: must be %q or %q", name, DigestSHA256, DigestRaw)
	}
}
