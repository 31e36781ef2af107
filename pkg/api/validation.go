package api

import (
	"fmt"
	"strings"
)

const (
	maxCompanyNameLength = 200
	maxQueryLength       = 4000
	maxAnalyticsDays     = 365
)

// ValidTier reports whether t is a known platform tier.
func ValidTier(t PlatformTier) bool {
	switch t {
	case TierStarter, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// ValidIntegration reports whether t is a known integration type.
func ValidIntegration(t IntegrationType) bool {
	switch t {
	case IntegrationFull, IntegrationAPIOnly, IntegrationWhatsAppOnly:
		return true
	}
	return false
}

// ValidChannel reports whether c is a known support channel.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelAPI, ChannelWhatsApp, ChannelWeb:
		return true
	}
	return false
}

// ValidateOnboardRequest checks an onboarding request after defaults have
// been applied. It returns the first validation failure, or nil.
func ValidateOnboardRequest(req *OnboardPartnerRequest) *APIError {
	if req.PartnerID == "" {
		return NewInvalidRequestError("partner_id", "partner_id is required")
	}
	if !ValidatePartnerID(req.PartnerID) {
		return NewInvalidRequestError("partner_id",
			"partner_id must be 2-64 lowercase letters, digits, '_' or '-'")
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		return NewInvalidRequestError("company_name", "company_name is required")
	}
	if len(req.CompanyName) > maxCompanyNameLength {
		return NewInvalidRequestError("company_name",
			fmt.Sprintf("company_name exceeds %d characters", maxCompanyNameLength))
	}
	if !ValidTier(req.PlatformTier) {
		return NewInvalidRequestError("platform_tier",
			fmt.Sprintf("unknown platform_tier %q", req.PlatformTier))
	}
	if !ValidIntegration(req.IntegrationType) {
		return NewInvalidRequestError("integration_type",
			fmt.Sprintf("unknown integration_type %q", req.IntegrationType))
	}
	if req.IntegrationType == IntegrationWhatsAppOnly && req.WhatsApp == nil {
		return NewInvalidRequestError("whatsapp_data",
			"whatsapp_data is required for whatsapp_only integration")
	}
	return nil
}

// ValidateSupportRequest checks a support request after defaults have been
// applied. It returns the first validation failure, or nil.
func ValidateSupportRequest(req *SupportRequest) *APIError {
	if req.PartnerID == "" {
		return NewInvalidRequestError("partner_id", "partner_id is required")
	}
	if !ValidatePartnerID(req.PartnerID) {
		return NewInvalidRequestError("partner_id", "malformed partner_id")
	}
	if req.CustomerID == "" {
		return NewInvalidRequestError("customer_id", "customer_id is required")
	}
	if strings.TrimSpace(req.QueryText) == "" {
		return NewInvalidRequestError("query_text", "query_text is required")
	}
	if len(req.QueryText) > maxQueryLength {
		return NewInvalidRequestError("query_text",
			fmt.Sprintf("query_text exceeds %d bytes", maxQueryLength))
	}
	if !ValidChannel(req.Channel) {
		return NewInvalidRequestError("channel", fmt.Sprintf("unknown channel %q", req.Channel))
	}
	return nil
}

// ValidateAnalyticsDays checks the analytics window length.
func ValidateAnalyticsDays(days int) *APIError {
	if days < 1 || days > maxAnalyticsDays {
		return NewInvalidRequestError("days",
			fmt.Sprintf("days must be between 1 and %d", maxAnalyticsDays))
	}
	return nil
}
