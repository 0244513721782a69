package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rhuss/vexgate/pkg/debug"
)

const (
	// maxJWKSBytes bounds the key set document.
	maxJWKSBytes = 1 << 20

	// refreshTimeout bounds a shared refresh, which is not tied to any
	// single caller's context.
	refreshTimeout = 10 * time.Second

	// minRefreshInterval is the minimum age of the cached set before an
	// unknown kid triggers another fetch.
	minRefreshInterval = 30 * time.Second
)

// keySet caches the RSA signing keys published at a JWKS URL. Concurrent
// misses share a single refresh.
type keySet struct {
	url        string
	ttl        time.Duration
	minRefresh time.Duration
	client     *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	refreshes singleflight.Group
}

func newKeySet(url string, ttl time.Duration, client *http.Client) *keySet {
	return &keySet{url: url, ttl: ttl, minRefresh: minRefreshInterval, client: client}
}

// cached returns the key for kid if the cache is still fresh. recent is
// true when the set was fetched less than minRefresh ago.
func (k *keySet) cached(kid string) (key *rsa.PublicKey, ok, recent bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	age := time.Since(k.fetchedAt)
	if age >= k.ttl {
		return nil, false, false
	}
	key, ok = k.keys[kid]
	return key, ok, age < k.minRefresh
}

// key returns the public key for kid, refreshing the set when the cache has
// expired or the kid is unknown and the set is older than minRefresh.
// Refresh failures wrap errJWKSUnavailable.
func (k *keySet) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, ok, recent := k.cached(kid)
	if ok {
		return key, nil
	}

	if !recent {
		if err := k.sharedRefresh(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", errJWKSUnavailable, err)
		}
		k.mu.RLock()
		key, ok = k.keys[kid]
		k.mu.RUnlock()
	}
	if !ok {
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}
	return key, nil
}

// sharedRefresh joins or starts a refresh and waits for it until ctx is
// done. The fetch itself runs detached from ctx, so a caller that gives
// up does not fail the others waiting on the same refresh.
func (k *keySet) sharedRefresh(ctx context.Context) error {
	ch := k.refreshes.DoChan("refresh", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, k.refresh(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh replaces the cached keys with a fresh copy of the set.
func (k *keySet) refresh(ctx context.Context) error {
	keys, err := k.fetch(ctx)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.keys = keys
	k.fetchedAt = time.Now()
	k.mu.Unlock()

	debug.Log("auth", "JWKS cache refreshed", "keys", len(keys), "url", k.url)
	return nil
}

func (k *keySet) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating JWKS request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		pub, err := jwk.rsaPublicKey()
		if err != nil {
			slog.Warn("skipping JWKS key", "kid", jwk.Kid, "error", err)
			continue
		}
		keys[jwk.Kid] = pub
	}
	return keys, nil
}

type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

// jwkKey is the subset of RFC 7517 fields needed for RSA signature keys.
type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"` // base64url modulus
	E   string `json:"e"` // base64url exponent
}

func (j jwkKey) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() > int64(^uint32(0)>>1) {
		return nil, errors.New("RSA exponent too large")
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e.Int64())}, nil
}
