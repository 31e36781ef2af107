package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/trademate/supportdesk/pkg/auth"
)

var testKey *rsa.PrivateKey

func init() {
	var err error
	testKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(fmt.Sprintf("generating test RSA key: %v", err))
	}
}

const (
	testKID      = "portal-key-1"
	testIssuer   = "https://portal.trademate.example"
	testAudience = "trademate-api"
)

func jwksHandler(fetches *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		pub := testKey.PublicKey
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{
				{"kty": "EC", "kid": "ignored"},
				{
					"kty": "RSA",
					"kid": testKID,
					"use": "sig",
					"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
				},
			},
		})
	}
}

func sign(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	s, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func partnerClaims() jwtlib.MapClaims {
	return jwtlib.MapClaims{
		"sub":        "user-42",
		"iss":        testIssuer,
		"aud":        testAudience,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"partner_id": "hdfc_bank",
		"tier":       "enterprise",
		"scope":      "support:write analytics:read",
	}
}

func newTestAuthenticator(t *testing.T, override func(*Config)) (*Authenticator, *atomic.Int32) {
	t.Helper()
	fetches := &atomic.Int32{}
	srv := httptest.NewServer(jwksHandler(fetches))
	t.Cleanup(srv.Close)

	cfg := Config{
		Issuer:     testIssuer,
		Audience:   testAudience,
		JWKSURL:    srv.URL,
		HTTPClient: srv.Client(),
	}
	if override != nil {
		override(&cfg)
	}
	return New(cfg), fetches
}

func authenticate(a *Authenticator, header string) auth.AuthResult {
	r, _ := http.NewRequest("GET", "/partners/hdfc_bank/analytics", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return a.Authenticate(context.Background(), r)
}

func TestJWT_ValidToken(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)

	result := authenticate(a, "Bearer "+sign(t, partnerClaims()))

	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %d, want Yes (err: %v)", result.Decision, result.Err)
	}
	id := result.Identity
	if id.Subject != "user-42" {
		t.Errorf("Subject = %q, want %q", id.Subject, "user-42")
	}
	if id.TenantID() != "hdfc_bank" {
		t.Errorf("TenantID = %q, want %q", id.TenantID(), "hdfc_bank")
	}
	if id.ServiceTier != "enterprise" {
		t.Errorf("ServiceTier = %q, want %q", id.ServiceTier, "enterprise")
	}
	if len(id.Scopes) != 2 || id.Scopes[0] != "support:write" {
		t.Errorf("Scopes = %v", id.Scopes)
	}
}

func TestJWT_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(jwtlib.MapClaims)
	}{
		{"expired", func(c jwtlib.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{"missing exp", func(c jwtlib.MapClaims) { delete(c, "exp") }},
		{"wrong audience", func(c jwtlib.MapClaims) { c["aud"] = "other-api" }},
		{"wrong issuer", func(c jwtlib.MapClaims) { c["iss"] = "https://evil.example" }},
		{"missing subject", func(c jwtlib.MapClaims) { delete(c, "sub") }},
	}

	a, _ := newTestAuthenticator(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := partnerClaims()
			tt.mutate(claims)
			result := authenticate(a, "Bearer "+sign(t, claims))
			if result.Decision != auth.No {
				t.Errorf("Decision = %d, want No", result.Decision)
			}
			if result.Err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestJWT_Abstains(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer tm_abcdefghijklmnopqrstuvwxyz012345"} {
		if got := authenticate(a, header).Decision; got != auth.Abstain {
			t.Errorf("header %q: Decision = %d, want Abstain", header, got)
		}
	}
}

func TestJWT_MalformedToken(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)

	for _, header := range []string{"Bearer ", "Bearer not.a.jwt"} {
		if got := authenticate(a, header).Decision; got != auth.No {
			t.Errorf("header %q: Decision = %d, want No", header, got)
		}
	}
}

func TestJWT_UnknownKID(t *testing.T) {
	a, _ := newTestAuthenticator(t, nil)

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, partnerClaims())
	token.Header["kid"] = "rotated-away"
	s, err := token.SignedString(testKey)
	if err != nil {
		t.Fatal(err)
	}

	if got := authenticate(a, "Bearer "+s).Decision; got != auth.No {
		t.Errorf("Decision = %d, want No", got)
	}
}

func TestJWT_KeyCaching(t *testing.T) {
	a, fetches := newTestAuthenticator(t, func(c *Config) { c.CacheTTL = time.Minute })
	now := time.Now()
	a.keys.now = func() time.Time { return now }

	token := "Bearer " + sign(t, partnerClaims())
	for i := 0; i < 3; i++ {
		if got := authenticate(a, token).Decision; got != auth.Yes {
			t.Fatalf("request %d: Decision = %d, want Yes", i+1, got)
		}
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("JWKS fetches = %d, want 1", n)
	}

	now = now.Add(2 * time.Minute)
	if got := authenticate(a, token).Decision; got != auth.Yes {
		t.Fatalf("after expiry: Decision = %d, want Yes", got)
	}
	if n := fetches.Load(); n != 2 {
		t.Errorf("JWKS fetches after expiry = %d, want 2", n)
	}
}

func TestJWT_CustomClaims(t *testing.T) {
	a, _ := newTestAuthenticator(t, func(c *Config) {
		c.UserClaim = "email"
		c.TenantClaim = "org"
		c.TierClaim = "plan"
		c.ScopesClaim = "permissions"
	})

	claims := jwtlib.MapClaims{
		"email":       "ops@groww.in",
		"iss":         testIssuer,
		"aud":         testAudience,
		"exp":         time.Now().Add(time.Hour).Unix(),
		"org":         "groww",
		"plan":        "professional",
		"permissions": []any{"support:write", 7, "admin"},
	}
	result := authenticate(a, "Bearer "+sign(t, claims))
	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %d, want Yes (err: %v)", result.Decision, result.Err)
	}
	id := result.Identity
	if id.Subject != "ops@groww.in" || id.ServiceTier != "professional" {
		t.Errorf("identity = %+v", id)
	}
	if !id.HasScope(auth.ScopeAdmin) {
		t.Errorf("Scopes = %v, want admin", id.Scopes)
	}
	// Admin identities are not tenant-bound.
	if id.TenantID() != "" {
		t.Errorf("TenantID = %q, want empty for admin", id.TenantID())
	}
}

func TestJWT_NoIssuerOrAudienceValidation(t *testing.T) {
	a, _ := newTestAuthenticator(t, func(c *Config) {
		c.Issuer = ""
		c.Audience = ""
	})

	claims := partnerClaims()
	claims["iss"] = "anyone"
	claims["aud"] = "anything"
	if got := authenticate(a, "Bearer "+sign(t, claims)).Decision; got != auth.Yes {
		t.Errorf("Decision = %d, want Yes", got)
	}
}
