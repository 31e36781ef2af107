// Package apikey authenticates operator and integration keys configured
// statically in auth.api_keys. Keys are kept as SHA-256 hashes and compared
// in constant time.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/auth"
)

// KeyEntry maps a key hash to an identity.
type KeyEntry struct {
	KeyHash  [32]byte
	Identity auth.Identity
}

// RawKeyEntry is the configuration form of a static key.
type RawKeyEntry struct {
	Key      string
	Identity auth.Identity
}

// Authenticator validates static keys.
type Authenticator struct {
	keys []KeyEntry
}

// New hashes entries and returns an authenticator over them. Plaintext keys
// are not retained.
func New(entries []RawKeyEntry) *Authenticator {
	a := &Authenticator{}
	for _, e := range entries {
		a.keys = append(a.keys, KeyEntry{
			KeyHash:  sha256.Sum256([]byte(e.Key)),
			Identity: e.Identity,
		})
	}
	return a
}

// Authenticate votes Yes for a configured key and No for any other key.
// It abstains without credentials, and for partner keys and JWTs so that
// the authenticators handling those can vote.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	token, ok := auth.Credential(r)
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if token == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}
	if strings.HasPrefix(token, api.APIKeyPrefix) || auth.LooksLikeJWT(token) {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	tokenHash := sha256.Sum256([]byte(token))
	for _, entry := range a.keys {
		if subtle.ConstantTimeCompare(tokenHash[:], entry.KeyHash[:]) == 1 {
			id := entry.Identity
			id.Scopes = append([]string(nil), entry.Identity.Scopes...)
			return auth.AuthResult{Decision: auth.Yes, Identity: &id}
		}
	}

	return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
}
