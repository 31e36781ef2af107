// Package partnerkey authenticates partners with the "tm_" API keys issued
// at onboarding. The authenticated identity is bound to the partner, so
// every request it makes is scoped to that partner's data.
package partnerkey

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/auth"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/storage"
)

// DefaultCacheTTL is how long a verified key is trusted before bcrypt runs
// again.
const DefaultCacheTTL = 5 * time.Minute

// KeyResolver returns the partner owning key, or storage.ErrNotFound.
type KeyResolver interface {
	AuthenticateKey(ctx context.Context, key string) (*api.Partner, error)
}

// Authenticator validates partner keys through a KeyResolver.
type Authenticator struct {
	resolver KeyResolver
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[[32]byte]cached
}

type cached struct {
	partnerID string
	tier      api.PlatformTier
	expires   time.Time
}

// New creates an authenticator. A ttl of zero uses DefaultCacheTTL; a
// negative ttl disables caching.
func New(resolver KeyResolver, ttl time.Duration) *Authenticator {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &Authenticator{
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[[32]byte]cached),
	}
}

// Authenticate votes Yes for a valid partner key and No for an unknown one.
// Credentials without the "tm_" prefix are left to other authenticators.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) auth.AuthResult {
	token, ok := auth.Credential(r)
	if !ok || !strings.HasPrefix(token, api.APIKeyPrefix) {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	sum := sha256.Sum256([]byte(token))
	if c, ok := a.lookup(sum); ok {
		return auth.AuthResult{Decision: auth.Yes, Identity: identity(c.partnerID, c.tier)}
	}

	p, err := a.resolver.AuthenticateKey(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}
	if err != nil {
		return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("resolving partner key: %w", err)}
	}

	debug.Log("auth", "partner key verified", "partner_id", p.ID)
	a.store(sum, cached{partnerID: p.ID, tier: p.Tier})

	return auth.AuthResult{Decision: auth.Yes, Identity: identity(p.ID, p.Tier)}
}

func (a *Authenticator) lookup(sum [32]byte) (cached, bool) {
	if a.ttl < 0 {
		return cached{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cache[sum]
	if !ok {
		return cached{}, false
	}
	if !a.now().Before(c.expires) {
		delete(a.cache, sum)
		return cached{}, false
	}
	return c, true
}

func (a *Authenticator) store(sum [32]byte, c cached) {
	if a.ttl < 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c.expires = a.now().Add(a.ttl)
	a.cache[sum] = c
}

func identity(partnerID string, tier api.PlatformTier) *auth.Identity {
	return &auth.Identity{
		Subject:     "partner:" + partnerID,
		ServiceTier: string(tier),
		Metadata: map[string]string{
			auth.MetadataTenant: partnerID,
		},
	}
}
