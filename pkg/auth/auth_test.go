package auth

import (
	"context"
	"net/http"
	"testing"
)

type mockAuthn struct {
	result AuthResult
}

func (m *mockAuthn) Authenticate(_ context.Context, _ *http.Request) AuthResult {
	return m.result
}

func TestAuthChain(t *testing.T) {
	yes := func(subject string) Authenticator {
		return &mockAuthn{result: AuthResult{Decision: Yes, Identity: &Identity{Subject: subject}}}
	}
	no := &mockAuthn{result: AuthResult{Decision: No, Err: ErrUnauthenticated}}
	abstain := &mockAuthn{result: AuthResult{Decision: Abstain}}

	tests := []struct {
		name        string
		chain       *AuthChain
		want        AuthDecision
		wantSubject string
	}{
		{"first yes stops", &AuthChain{Authenticators: []Authenticator{yes("alice"), no}, DefaultDecision: No}, Yes, "alice"},
		{"first no stops", &AuthChain{Authenticators: []Authenticator{no, yes("bob")}, DefaultDecision: Yes}, No, ""},
		{"abstain then yes", &AuthChain{Authenticators: []Authenticator{abstain, yes("partner:groww")}, DefaultDecision: No}, Yes, "partner:groww"},
		{"all abstain default reject", &AuthChain{Authenticators: []Authenticator{abstain, abstain}, DefaultDecision: No}, No, ""},
		{"all abstain default accept", &AuthChain{Authenticators: []Authenticator{abstain}, DefaultDecision: Yes}, Yes, "anonymous"},
		{"empty chain", &AuthChain{DefaultDecision: No}, No, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			result := tt.chain.Authenticate(context.Background(), r)

			if result.Decision != tt.want {
				t.Fatalf("Decision = %d, want %d", result.Decision, tt.want)
			}
			if tt.want == Yes && result.Identity.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", result.Identity.Subject, tt.wantSubject)
			}
			if tt.want == No && result.Err == nil {
				t.Error("expected error with No decision")
			}
		})
	}
}

func TestIdentity_TenantID(t *testing.T) {
	tests := []struct {
		name string
		id   *Identity
		want string
	}{
		{"partner", &Identity{Subject: "partner:groww", Metadata: map[string]string{MetadataTenant: "groww"}}, "groww"},
		{"no metadata", &Identity{Subject: "bob"}, ""},
		{"admin ignores tenant", &Identity{Subject: "ops", Scopes: []string{ScopeAdmin}, Metadata: map[string]string{MetadataTenant: "groww"}}, ""},
		{"nil identity", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.TenantID(); got != tt.want {
				t.Errorf("TenantID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if IdentityFromContext(ctx) != nil {
		t.Error("expected nil identity from empty context")
	}

	ctx = SetIdentity(ctx, &Identity{Subject: "alice"})
	got := IdentityFromContext(ctx)
	if got == nil || got.Subject != "alice" {
		t.Errorf("got %v, want alice", got)
	}
}

func TestCredential(t *testing.T) {
	tests := []struct {
		name      string
		headers   map[string]string
		wantToken string
		wantOK    bool
	}{
		{"bearer", map[string]string{"Authorization": "Bearer tm_abc"}, "tm_abc", true},
		{"x-api-key", map[string]string{"X-API-Key": "static-key"}, "static-key", true},
		{"bearer wins", map[string]string{"Authorization": "Bearer one", "X-API-Key": "two"}, "one", true},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}, "", true},
		{"other scheme", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, "", false},
		{"none", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			token, ok := Credential(r)
			if token != tt.wantToken || ok != tt.wantOK {
				t.Errorf("Credential = (%q, %v), want (%q, %v)", token, ok, tt.wantToken, tt.wantOK)
			}
		})
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !LooksLikeJWT("a.b.c") {
		t.Error("a.b.c should look like a JWT")
	}
	if LooksLikeJWT("tm_abc") || LooksLikeJWT("a.b") {
		t.Error("non-JWT tokens reported as JWT")
	}
}
