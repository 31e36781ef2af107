package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/trademate/supportdesk/pkg/advice"
	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/observability"
)

// marketAnalysisTime is the processing time reported by MarketAnalysis.
const marketAnalysisTime = 0.8

// ProcessSupportRequest answers a customer query for a partner and records
// the interaction. Unknown partners are auto-provisioned.
func (s *Service) ProcessSupportRequest(ctx context.Context, req *api.SupportRequest) (*api.Interaction, error) {
	ctx, span := observability.StartSpan(ctx, "platform.ProcessSupportRequest", partnerAttr(req.PartnerID))
	defer span.End()

	start := time.Now()

	req.ApplyDefaults()
	if apiErr := api.ValidateSupportRequest(req); apiErr != nil {
		return nil, apiErr
	}

	partner, err := s.partnerFor(ctx, req.PartnerID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	adv := advice.Respond(req.QueryText, req.Language)
	escalated := s.shouldEscalate(req.QueryText, req.Context)

	privacy := api.PrivacyStandard
	if partner.Compliance.Any() {
		privacy = api.PrivacyEnhanced
	}

	in := &api.Interaction{
		ID:             api.NewInteractionID(),
		PartnerID:      partner.ID,
		CustomerID:     req.CustomerID,
		Channel:        req.Channel,
		Language:       string(adv.Language),
		QueryText:      req.QueryText,
		Intent:         string(adv.Intent),
		ResponseText:   adv.Text,
		Escalated:      escalated,
		PrivacyLevel:   privacy,
		CreatedAt:      s.now().Unix(),
		ProcessingTime: time.Since(start).Seconds(),
	}

	if err := s.store.SaveInteraction(ctx, in); err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("saving interaction: %w", err)
	}

	observability.SupportRequestsTotal.WithLabelValues(in.Intent, in.Language, string(in.Channel)).Inc()
	if escalated {
		observability.EscalationsTotal.WithLabelValues(string(partner.Tier)).Inc()
		slog.Info("support request escalated",
			"partner_id", partner.ID, "interaction_id", in.ID, "customer_id", in.CustomerID)
	}
	span.SetAttributes(
		attribute.String("trademate.intent", in.Intent),
		attribute.Bool("trademate.escalated", escalated),
	)

	debug.Log("platform", "support request processed",
		"partner_id", partner.ID,
		"interaction_id", in.ID,
		"intent", in.Intent,
		"language", in.Language,
		"channel", in.Channel,
		"processing_time", in.ProcessingTime,
	)

	return in, nil
}

// SupportResponse converts an interaction into the response body of
// POST /support/process.
func SupportResponse(in *api.Interaction) *api.SupportResponse {
	return &api.SupportResponse{
		Status:           api.StatusSuccess,
		InteractionID:    in.ID,
		Response:         in.ResponseText,
		Language:         in.Language,
		Intent:           in.Intent,
		ProcessingTime:   in.ProcessingTime,
		Escalated:        in.Escalated,
		PrivacyProtected: in.PrivacyLevel != "",
	}
}

// MockSupportResponse is the degraded reply used when a support request
// fails after it was accepted.
func MockSupportResponse(req *api.SupportRequest) *api.SupportResponse {
	lang := req.Language
	if lang == "" {
		lang = api.DefaultLanguage
	}
	return &api.SupportResponse{
		Status:         api.StatusProcessedWithMock,
		Response:       advice.FallbackText(req.QueryText),
		Language:       lang,
		Intent:         string(advice.IntentGeneral),
		ProcessingTime: 0.05,
		Escalated:      false,
		Note:           "Mock response due to missing dependencies",
	}
}

// MarketAnalysis returns canned market advice for a query without
// recording an interaction.
func (s *Service) MarketAnalysis(ctx context.Context, req *api.SupportRequest) (*api.MarketAnalysisResponse, error) {
	_, span := observability.StartSpan(ctx, "platform.MarketAnalysis", partnerAttr(req.PartnerID))
	defer span.End()

	req.ApplyDefaults()
	if apiErr := api.ValidateSupportRequest(req); apiErr != nil {
		return nil, apiErr
	}

	adv := advice.Respond(req.QueryText, req.Language)

	return &api.MarketAnalysisResponse{
		Status:   api.StatusSuccess,
		Query:    req.QueryText,
		Language: req.Language,
		Intent:   string(adv.Intent),
		Response: adv.Text,
		MarketAnalysis: api.MarketAnalysis{
			Category:              adv.Category,
			Confidence:            adv.Confidence,
			IndianMarketExpertise: true,
			RegulatoryCompliant:   true,
		},
		ProcessingTime: marketAnalysisTime,
		Escalated:      false,
	}, nil
}

// MarketAnalysisFallback is the body returned when market analysis fails.
func MarketAnalysisFallback(err error) *api.FallbackResponse {
	return &api.FallbackResponse{
		Status:           api.StatusError,
		Error:            err.Error(),
		FallbackResponse: advice.MaintenanceText,
	}
}
