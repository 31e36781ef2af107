package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/platform"
	"github.com/trademate/supportdesk/pkg/storage"
	"github.com/trademate/supportdesk/pkg/transport"
)

// SignatureHeader carries the HMAC of a WhatsApp webhook body.
const SignatureHeader = "X-Hub-Signature-256"

// Adapter serves the TradeMate platform API over HTTP.
// It routes requests to the platform and serializes responses.
type Adapter struct {
	platform transport.SupportPlatform
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64

	// MetricsPath mounts MetricsHandler when both are set.
	MetricsPath    string
	MetricsHandler http.Handler
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MB
	}
}

// NewAdapter creates an HTTP adapter for the given platform.
func NewAdapter(p transport.SupportPlatform, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		platform: p,
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("GET /health", a.handleHealth)
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	a.mux.HandleFunc("GET /platform/status", a.handleStatus)

	a.mux.HandleFunc("POST /partners/onboard", a.handleOnboard)
	a.mux.HandleFunc("GET /partners/{partner_id}/analytics", a.handleAnalytics)
	a.mux.HandleFunc("GET /partners/{partner_id}/dashboard", a.handleDashboard)

	a.mux.HandleFunc("POST /support/process", a.handleSupport)
	a.mux.HandleFunc("POST /demo/market-analysis", a.handleMarketAnalysis)

	a.mux.HandleFunc("GET /whatsapp/webhook/{partner_id}", a.handleWebhookVerify)
	a.mux.HandleFunc("POST /whatsapp/webhook/{partner_id}", a.handleWebhook)

	if cfg.MetricsPath != "" && cfg.MetricsHandler != nil {
		a.mux.Handle("GET "+cfg.MetricsPath, cfg.MetricsHandler)
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. Middleware is applied by the
// caller.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, a.platform.Health())
}

func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.platform.Ready(r.Context()); err != nil {
		slog.Warn("readiness check failed", "error", err)
		transport.WriteErrorResponse(w,
			api.NewServerError("storage unavailable"),
			http.StatusServiceUnavailable,
		)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleStatus handles GET /platform/status.
func (a *Adapter) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.platform.Status(r.Context())
	if err != nil {
		slog.Error("platform status failed", "error", err)
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, status)
}

// handleOnboard handles POST /partners/onboard.
func (a *Adapter) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req api.OnboardPartnerRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if !checkTenant(w, r, req.PartnerID) {
		return
	}

	resp, err := a.platform.OnboardPartner(r.Context(), &req)
	if err != nil {
		if !isAPIError(err) {
			slog.Error("partner onboarding failed", "partner_id", req.PartnerID, "error", err)
		}
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleSupport handles POST /support/process. Request errors are reported
// as APIErrors; any other failure degrades to a canned reply with
// status "processed_with_mock".
func (a *Adapter) handleSupport(w http.ResponseWriter, r *http.Request) {
	var req api.SupportRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if !checkTenant(w, r, req.PartnerID) {
		return
	}

	in, err := a.platform.ProcessSupportRequest(r.Context(), &req)
	if err != nil {
		if isAPIError(err) {
			transport.WriteError(w, err)
			return
		}
		slog.Error("support processing failed, using mock response",
			"partner_id", req.PartnerID,
			"request_id", transport.RequestIDFromContext(r.Context()),
			"error", err,
		)
		transport.WriteJSON(w, http.StatusOK, platform.MockSupportResponse(&req))
		return
	}
	transport.WriteJSON(w, http.StatusOK, platform.SupportResponse(in))
}

// handleMarketAnalysis handles POST /demo/market-analysis.
func (a *Adapter) handleMarketAnalysis(w http.ResponseWriter, r *http.Request) {
	var req api.SupportRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if !checkTenant(w, r, req.PartnerID) {
		return
	}

	resp, err := a.platform.MarketAnalysis(r.Context(), &req)
	if err != nil {
		if isAPIError(err) {
			transport.WriteError(w, err)
			return
		}
		slog.Error("market analysis failed", "error", err)
		transport.WriteJSON(w, http.StatusOK, platform.MarketAnalysisFallback(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleAnalytics handles GET /partners/{partner_id}/analytics?days=N.
func (a *Adapter) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	partnerID := r.PathValue("partner_id")
	if !checkTenant(w, r, partnerID) {
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			transport.WriteAPIError(w, api.NewInvalidRequestError("days", "days must be an integer"))
			return
		}
		if n == 0 {
			// Zero would otherwise select the default window.
			transport.WriteAPIError(w, api.ValidateAnalyticsDays(0))
			return
		}
		days = n
	}

	report, err := a.platform.Analytics(r.Context(), partnerID, days)
	if err != nil {
		writePlatformError(w, "analytics failed", partnerID, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, report)
}

// handleDashboard handles GET /partners/{partner_id}/dashboard.
func (a *Adapter) handleDashboard(w http.ResponseWriter, r *http.Request) {
	partnerID := r.PathValue("partner_id")
	if !checkTenant(w, r, partnerID) {
		return
	}

	dash, err := a.platform.Dashboard(r.Context(), partnerID)
	if err != nil {
		writePlatformError(w, "dashboard failed", partnerID, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, dash)
}

// handleWebhookVerify handles the GET subscription handshake. The challenge
// is echoed back as a JSON number.
func (a *Adapter) handleWebhookVerify(w http.ResponseWriter, r *http.Request) {
	partnerID := r.PathValue("partner_id")
	q := r.URL.Query()

	challenge, err := a.platform.VerifyWebhook(r.Context(), partnerID,
		q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge"))
	if err != nil {
		writePlatformError(w, "webhook verification failed", partnerID, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, challenge)
}

// handleWebhook handles POST notifications. The raw body is passed through
// so the signature can be checked against the exact bytes received.
func (a *Adapter) handleWebhook(w http.ResponseWriter, r *http.Request) {
	partnerID := r.PathValue("partner_id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.config.MaxBodySize))
	if err != nil {
		a.writeBodyError(w, err)
		return
	}
	debug.Log("webhook", "notification received", "partner_id", partnerID, "bytes", len(body))

	result, err := a.platform.HandleWebhook(r.Context(), partnerID, body, r.Header.Get(SignatureHeader))
	if err != nil {
		writePlatformError(w, "webhook processing failed", partnerID, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, result)
}

// decodeJSON enforces the JSON content type and body size limit, then
// decodes the body into dst. It writes the error response and returns
// false on failure.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return false
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.writeBodyError(w, err)
		return false
	}
	return true
}

func (a *Adapter) writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
			http.StatusRequestEntityTooLarge,
		)
		return
	}
	transport.WriteErrorResponse(w,
		api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
		http.StatusBadRequest,
	)
}

// checkTenant rejects requests from a partner-bound caller that names a
// different partner. It writes a 403 and returns false on mismatch.
func checkTenant(w http.ResponseWriter, r *http.Request, partnerID string) bool {
	if partnerID == "" || storage.TenantAllows(r.Context(), partnerID) {
		return true
	}
	debug.Log("transport", "tenant mismatch",
		"tenant", storage.GetTenant(r.Context()), "partner_id", partnerID)
	transport.WriteAPIError(w, api.NewForbiddenError("partner is outside the authenticated scope"))
	return false
}

func writePlatformError(w http.ResponseWriter, msg, partnerID string, err error) {
	if !isAPIError(err) {
		slog.Error(msg, "partner_id", partnerID, "error", err)
	}
	transport.WriteError(w, err)
}

func isAPIError(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr)
}
