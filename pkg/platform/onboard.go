package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/observability"
	"github.com/trademate/supportdesk/pkg/storage"
)

// OnboardPartner validates req, issues an API key, and stores the partner.
//
// A partner that was auto-provisioned by an earlier support request is
// replaced by the onboarded record. Onboarding an ID that already belongs
// to a fully onboarded partner is a conflict.
func (s *Service) OnboardPartner(ctx context.Context, req *api.OnboardPartnerRequest) (*api.OnboardPartnerResponse, error) {
	ctx, span := observability.StartSpan(ctx, "platform.OnboardPartner", partnerAttr(req.PartnerID))
	defer span.End()

	req.ApplyDefaults()
	if apiErr := api.ValidateOnboardRequest(req); apiErr != nil {
		return nil, apiErr
	}
	if !storage.TenantAllows(ctx, req.PartnerID) {
		return nil, api.NewForbiddenError("partner is outside the authenticated scope")
	}

	existing, err := s.store.GetPartner(ctx, req.PartnerID)
	switch {
	case err == nil && !existing.Provisional:
		return nil, api.NewConflictError("partner_id",
			fmt.Sprintf("partner %q is already onboarded", req.PartnerID))
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		observability.RecordError(span, err)
		return nil, fmt.Errorf("loading partner: %w", err)
	}

	plan, _ := Plan(req.PlatformTier)

	key := api.NewAPIKey()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing API key: %w", err)
	}

	p := &api.Partner{
		ID:            req.PartnerID,
		CompanyName:   req.CompanyName,
		BusinessType:  req.BusinessType,
		Tier:          req.PlatformTier,
		Integration:   req.IntegrationType,
		Languages:     req.Languages,
		KnowledgeBase: req.KnowledgeBase,
		WhatsApp:      req.WhatsApp,
		Compliance: api.Compliance{
			GDPR: req.GDPRRequired,
			RBI:  req.RBIRequired,
			SEBI: req.SEBIRequired,
		},
		FeaturesEnabled: Features(req.PlatformTier, req.IntegrationType),
		CreatedAt:       s.now().Unix(),
		APIKeyLookup:    api.KeyLookup(key),
		APIKeyHash:      hash,
	}

	// A concurrent onboarding of the same ID may have landed since the
	// lookup above; the store only replaces provisional records.
	err = s.store.UpsertPartner(ctx, p)
	if errors.Is(err, storage.ErrConflict) {
		return nil, api.NewConflictError("partner_id",
			fmt.Sprintf("partner %q is already onboarded", req.PartnerID))
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("storing partner: %w", err)
	}

	observability.PartnersOnboardedTotal.WithLabelValues(string(p.Tier)).Inc()
	span.SetAttributes(attribute.String("trademate.tier", string(p.Tier)))

	slog.Info("partner onboarded",
		"partner_id", p.ID,
		"tier", p.Tier,
		"integration", p.Integration,
		"replaced_provisional", existing != nil,
	)

	return &api.OnboardPartnerResponse{
		Status:               api.StatusSuccess,
		Message:              fmt.Sprintf("Partner %s onboarding initiated", p.ID),
		PartnerID:            p.ID,
		PlatformTier:         p.Tier,
		IntegrationType:      p.Integration,
		MonthlyBaseCost:      plan.MonthlyBaseCost,
		IncludedInteractions: plan.IncludedInteractions,
		FeaturesEnabled:      p.FeaturesEnabled,
		APIKey:               key,
	}, nil
}

// AuthenticateKey resolves the partner owning a "tm_" API key. It returns
// storage.ErrNotFound when the key is unknown or does not match.
func (s *Service) AuthenticateKey(ctx context.Context, key string) (*api.Partner, error) {
	lookup := api.KeyLookup(key)
	if lookup == "" {
		return nil, storage.ErrNotFound
	}
	p, err := s.store.GetPartnerByKeyPrefix(ctx, lookup)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(p.APIKeyHash, []byte(key)) != nil {
		return nil, storage.ErrNotFound
	}
	return p, nil
}
