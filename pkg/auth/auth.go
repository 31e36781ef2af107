package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
)

// AuthDecision is an authenticator's vote on a request.
type AuthDecision int

const (
	// Yes means the credentials are valid. The chain stops and the identity
	// is used.
	Yes AuthDecision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means the authenticator does not handle these credentials.
	Abstain
)

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // set when Decision == Yes
	Err      error     // set when Decision == No
}

// Metadata keys understood by the middleware.
const (
	// MetadataTenant holds the partner ID a caller is restricted to.
	MetadataTenant = "tenant_id"
)

// ScopeAdmin marks operator identities that may act for any partner.
const ScopeAdmin = "admin"

// Identity is an authenticated caller.
type Identity struct {
	// Subject is the unique identifier (required, non-empty).
	Subject string

	// ServiceTier selects the rate limit. Partner callers carry their
	// platform tier.
	ServiceTier string

	// Scopes lists the authorization scopes granted.
	Scopes []string

	// Metadata carries authenticator-specific data. See MetadataTenant.
	Metadata map[string]string
}

// TenantID returns the partner ID the identity is restricted to, or ""
// for unrestricted identities.
func (id *Identity) TenantID() string {
	if id == nil || id.Metadata == nil || id.HasScope(ScopeAdmin) {
		return ""
	}
	return id.Metadata[MetadataTenant]
}

// HasScope reports whether the identity was granted scope.
func (id *Identity) HasScope(scope string) bool {
	return id != nil && slices.Contains(id.Scopes, scope)
}

// Anonymous is the identity used when the chain accepts a request without
// credentials.
func Anonymous() *Identity {
	return &Identity{Subject: "anonymous", ServiceTier: "default"}
}

// Authenticator examines request credentials and votes.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// AuthChain asks authenticators in order.
type AuthChain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// DefaultDecision applies when all authenticators abstain. Yes admits
	// the request as Anonymous.
	DefaultDecision AuthDecision
}

// Authenticate runs the chain, stopping on the first Yes or No.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Yes {
		return AuthResult{Decision: Yes, Identity: Anonymous()}
	}
	return AuthResult{Decision: No, Err: ErrUnauthenticated}
}

// APIKeyHeader is accepted as an alternative to a bearer token.
const APIKeyHeader = "X-API-Key"

// Credential returns the caller's token from "Authorization: Bearer" or,
// failing that, the X-API-Key header. ok is false when neither header is
// present. A present but empty credential returns ("", true).
func Credential(r *http.Request) (token string, ok bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
	}
	if values, present := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]; present {
		if len(values) == 0 {
			return "", true
		}
		return strings.TrimSpace(values[0]), true
	}
	return "", false
}

// LooksLikeJWT reports whether token has the three-segment JWS compact form.
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
