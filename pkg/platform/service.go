package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/observability"
	"github.com/trademate/supportdesk/pkg/storage"
)

const (
	// ServiceName and Version are reported by the health endpoint.
	ServiceName = "TradeMate SaaS Platform"
	Version     = "1.0.0"
)

// DefaultVerifyTokenSuffix is appended to the partner ID to form the
// default webhook verify token.
const DefaultVerifyTokenSuffix = "_verify_token"

// DefaultEscalationKeywords trigger a human handoff when found in a query.
var DefaultEscalationKeywords = []string{"complaint", "fraud", "शिकायत", "धोखाधड़ी"}

// Config holds platform behavior settings.
type Config struct {
	// EscalationKeywords are matched case-insensitively against queries.
	EscalationKeywords []string

	// BcryptCost is the cost used to hash issued partner API keys.
	BcryptCost int

	// VerifyTokenSuffix forms the webhook verify token of partners that did
	// not configure one: partner ID + suffix.
	VerifyTokenSuffix string
}

// DefaultConfig returns the default platform configuration.
func DefaultConfig() Config {
	return Config{
		EscalationKeywords: append([]string(nil), DefaultEscalationKeywords...),
		BcryptCost:         bcrypt.DefaultCost,
		VerifyTokenSuffix:  DefaultVerifyTokenSuffix,
	}
}

// Service implements the platform operations on top of a storage.Store.
type Service struct {
	store storage.Store
	cfg   Config
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for timestamps and reporting
// windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service backed by store.
func New(store storage.Store, cfg Config, opts ...Option) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.VerifyTokenSuffix == "" {
		cfg.VerifyTokenSuffix = DefaultVerifyTokenSuffix
	}
	if cfg.EscalationKeywords == nil {
		cfg.EscalationKeywords = append([]string(nil), DefaultEscalationKeywords...)
	}
	lowered := make([]string, 0, len(cfg.EscalationKeywords))
	for _, kw := range cfg.EscalationKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	cfg.EscalationKeywords = lowered

	s := &Service{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backing store.
func (s *Service) Store() storage.Store {
	return s.store
}

// Health reports liveness information for GET /health.
func (s *Service) Health() *api.HealthStatus {
	now := s.now()
	return &api.HealthStatus{
		Status:    api.StatusHealthy,
		Service:   ServiceName,
		Version:   Version,
		Timestamp: float64(now.UnixNano()) / 1e9,
	}
}

// Ready checks that the backing store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

// Status reports partner and interaction counts for GET /platform/status.
func (s *Service) Status(ctx context.Context) (*api.PlatformStatus, error) {
	ctx, span := observability.StartSpan(ctx, "platform.Status")
	defer span.End()

	partners, err := s.store.CountPartners(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("counting partners: %w", err)
	}
	interactions, err := s.store.CountInteractions(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("counting interactions: %w", err)
	}

	return &api.PlatformStatus{
		PlatformStatus:    api.StatusOperational,
		ActivePartners:    partners,
		TotalInteractions: interactions,
		Services: map[string]string{
			"ai_support":           api.StatusOperational,
			"whatsapp_integration": api.StatusOperational,
			"zk_privacy":           api.StatusOperational,
		},
	}, nil
}

// Partners lists the partners visible to the caller, oldest first.
func (s *Service) Partners(ctx context.Context) ([]*api.Partner, error) {
	ctx, span := observability.StartSpan(ctx, "platform.Partners")
	defer span.End()

	list, err := s.store.ListPartners(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	return list, nil
}

// partnerFor returns the partner for id, auto-provisioning a provisional
// professional partner when none exists.
func (s *Service) partnerFor(ctx context.Context, id string) (*api.Partner, error) {
	p, err := s.store.GetPartner(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading partner %s: %w", id, err)
	}
	if !storage.TenantAllows(ctx, id) {
		return nil, api.NewForbiddenError("partner is outside the authenticated scope")
	}

	slog.Warn("partner not found, creating mock configuration", "partner_id", id)

	p = provisionalPartner(id, s.now())
	if err := s.store.CreatePartner(ctx, p); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost a race with a concurrent request for the same partner.
			return s.store.GetPartner(ctx, id)
		}
		return nil, fmt.Errorf("provisioning partner %s: %w", id, err)
	}
	return p, nil
}

func provisionalPartner(id string, now time.Time) *api.Partner {
	return &api.Partner{
		ID:              id,
		CompanyName:     "Partner " + id,
		Tier:            api.DefaultTier,
		Integration:     api.IntegrationFull,
		Languages:       append([]string(nil), api.DefaultLanguages...),
		FeaturesEnabled: Features(api.DefaultTier, api.IntegrationFull),
		Provisional:     true,
		CreatedAt:       now.Unix(),
	}
}

// shouldEscalate reports whether a query needs a human agent.
func (s *Service) shouldEscalate(query string, reqCtx map[string]any) bool {
	if v, ok := reqCtx["escalate"].(bool); ok && v {
		return true
	}
	q := strings.ToLower(query)
	for _, kw := range s.cfg.EscalationKeywords {
		if strings.Contains(q, kw) {
			debug.Log("platform", "escalation keyword matched", "keyword", kw)
			return true
		}
	}
	return false
}

func partnerAttr(id string) attribute.KeyValue {
	return attribute.String("trademate.partner_id", id)
}
