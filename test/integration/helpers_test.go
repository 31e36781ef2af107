// Package integration provides end-to-end tests for the TradeMate platform
// API.
//
// Tests run against real servers started in-process with net/http/httptest:
// an open server without authentication, and a secured server that accepts
// partner keys and a static operator key, enforces rate limits, and serves
// Prometheus metrics.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/trademate/supportdesk/pkg/auth"
	"github.com/trademate/supportdesk/pkg/auth/apikey"
	"github.com/trademate/supportdesk/pkg/auth/noop"
	"github.com/trademate/supportdesk/pkg/auth/partnerkey"
	"github.com/trademate/supportdesk/pkg/observability"
	"github.com/trademate/supportdesk/pkg/platform"
	"github.com/trademate/supportdesk/pkg/storage/memory"
	"github.com/trademate/supportdesk/pkg/transport"
	transporthttp "github.com/trademate/supportdesk/pkg/transport/http"
)

const (
	opsKey = "ops-integration-key"

	// starterRPM is low enough to exhaust within a test.
	starterRPM = 3
)

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the open and secured platform servers.
type TestEnvironment struct {
	Open    *httptest.Server
	Secured *httptest.Server
}

// TestMain starts both servers before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

func newService() *platform.Service {
	return platform.New(memory.New(100), platform.Config{BcryptCost: bcrypt.MinCost})
}

func setupTestEnvironment() *TestEnvironment {
	openSvc := newService()
	openChain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{&noop.Authenticator{}},
		DefaultDecision: auth.Yes,
	}
	open := transporthttp.NewServer(openSvc,
		transporthttp.WithMiddleware(transport.Middleware(auth.Middleware(openChain, nil, auth.DefaultBypassEndpoints))),
	)

	securedSvc := newService()
	securedChain := &auth.AuthChain{
		Authenticators: []auth.Authenticator{
			partnerkey.New(securedSvc, 0),
			apikey.New([]apikey.RawKeyEntry{{
				Key: opsKey,
				Identity: auth.Identity{
					Subject:     "ops",
					ServiceTier: "operator",
					Scopes:      []string{auth.ScopeAdmin},
				},
			}}),
		},
		DefaultDecision: auth.No,
	}
	limiter := auth.NewInProcessLimiter(map[string]auth.TierConfig{
		"starter": {RequestsPerMinute: starterRPM},
	}, 0)
	secured := transporthttp.NewServer(securedSvc,
		transporthttp.WithMetrics("/metrics", promhttp.Handler()),
		transporthttp.WithMiddleware(
			observability.MetricsMiddleware,
			transport.Middleware(auth.Middleware(securedChain, limiter, auth.DefaultBypassEndpoints)),
		),
	)

	return &TestEnvironment{
		Open:    httptest.NewServer(open.Handler()),
		Secured: httptest.NewServer(secured.Handler()),
	}
}

// Teardown stops both servers.
func (env *TestEnvironment) Teardown() {
	if env.Open != nil {
		env.Open.Close()
	}
	if env.Secured != nil {
		env.Secured.Close()
	}
}

// --- HTTP helpers ---

// do sends a request with an optional JSON body and credential header.
func do(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

// postJSON sends a POST request with JSON body and returns the response.
func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	return do(t, http.MethodPost, url, body, nil)
}

// getURL sends a GET request and returns the response.
func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	return do(t, http.MethodGet, url, nil, nil)
}

func bearer(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(body)
}

// decodeJSON reads the response body and decodes it into the target.
func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, want, readBody(t, resp))
	}
}
