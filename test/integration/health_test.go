package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/trademate/supportdesk/pkg/api"
)

func TestHealthEndpoint(t *testing.T) {
	resp := getURL(t, testEnv.Open.URL+"/health")
	expectStatus(t, resp, http.StatusOK)

	var health api.HealthStatus
	decodeJSON(t, resp, &health)
	if health.Status != api.StatusHealthy {
		t.Errorf("status = %q, want %q", health.Status, api.StatusHealthy)
	}
	if health.Service != "TradeMate SaaS Platform" {
		t.Errorf("service = %q", health.Service)
	}
}

func TestProbesNoAuth(t *testing.T) {
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			resp := getURL(t, testEnv.Secured.URL+path)
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200 without auth, got %d: %s", resp.StatusCode, body)
			}
			if path == "/healthz" && !strings.Contains(body, "ok") {
				t.Errorf("body = %q, want to contain 'ok'", body)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, testEnv.Open.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "integration-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "integration-42" {
		t.Errorf("X-Request-ID = %q, want %q", got, "integration-42")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	// Generate at least one request on the secured server first.
	readBody(t, getURL(t, testEnv.Secured.URL+"/healthz"))

	resp := getURL(t, testEnv.Secured.URL+"/metrics")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "trademate_requests_total") {
		t.Error("metrics output missing trademate_requests_total")
	}
}
