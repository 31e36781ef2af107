package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MetricsMiddleware wraps an HTTP handler to record request metrics.
//
// It captures:
//   - trademate_requests_total (counter): method, status class, and route labels
//   - trademate_request_duration_seconds (histogram): method and route labels
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := RouteLabel(r.URL.Path)
		statusStr := strconv.Itoa(sw.status/100) + "xx"

		RequestsTotal.WithLabelValues(r.Method, statusStr, route).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

var staticRoutes = map[string]bool{
	"/health":               true,
	"/healthz":              true,
	"/readyz":               true,
	"/metrics":              true,
	"/platform/status":      true,
	"/partners/onboard":     true,
	"/support/process":      true,
	"/demo/market-analysis": true,
}

// RouteLabel maps a request path to a bounded route label, replacing the
// partner ID segment with a placeholder. Unknown paths map to "other".
func RouteLabel(path string) string {
	if staticRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/whatsapp/webhook/") {
		return "/whatsapp/webhook/{partner_id}"
	}
	if rest, ok := strings.CutPrefix(path, "/partners/"); ok {
		if _, suffix, ok := strings.Cut(rest, "/"); ok {
			switch suffix {
			case "analytics", "dashboard":
				return "/partners/{partner_id}/" + suffix
			}
		}
	}
	return "other"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader captures the status code and delegates to the underlying writer.
func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write delegates to the underlying writer and marks the status as written.
func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter, enabling http.ResponseController
// and similar utilities to access the original writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
