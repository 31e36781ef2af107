package platform

import (
	"sort"

	"github.com/trademate/supportdesk/pkg/api"
)

// TierPlan is the commercial definition of a platform tier. Amounts are
// whole rupees.
type TierPlan struct {
	Tier                  api.PlatformTier `json:"tier"`
	MonthlyBaseCost       int64            `json:"monthly_base_cost"`
	IncludedInteractions  int              `json:"included_interactions"`
	OveragePerInteraction int64            `json:"overage_per_interaction"`
	RequestsPerMinute     int              `json:"requests_per_minute"`
}

var plans = map[api.PlatformTier]TierPlan{
	api.TierStarter: {
		Tier:                  api.TierStarter,
		MonthlyBaseCost:       25_000,
		IncludedInteractions:  1_000,
		OveragePerInteraction: 25,
		RequestsPerMinute:     60,
	},
	api.TierProfessional: {
		Tier:                  api.TierProfessional,
		MonthlyBaseCost:       75_000,
		IncludedInteractions:  5_000,
		OveragePerInteraction: 15,
		RequestsPerMinute:     300,
	},
	api.TierEnterprise: {
		Tier:                  api.TierEnterprise,
		MonthlyBaseCost:       250_000,
		IncludedInteractions:  25_000,
		OveragePerInteraction: 10,
		RequestsPerMinute:     1200,
	},
}

// Plan returns the plan for tier.
func Plan(tier api.PlatformTier) (TierPlan, bool) {
	p, ok := plans[tier]
	return p, ok
}

// Plans returns every plan ordered by base cost.
func Plans() []TierPlan {
	out := make([]TierPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthlyBaseCost < out[j].MonthlyBaseCost })
	return out
}

// Feature names reported in features_enabled.
const (
	FeatureAISupport           = "ai_support"
	FeatureMultilingual        = "multilingual"
	FeatureAnalytics           = "analytics"
	FeaturePrivacyProtection   = "privacy_protection"
	FeatureAPIAccess           = "api_access"
	FeatureWhatsApp            = "whatsapp_integration"
	FeatureAdvancedAnalytics   = "advanced_analytics"
	FeatureDedicatedSupport    = "dedicated_support"
	FeatureCustomKnowledgeBase = "custom_knowledge_base"
)

// Features derives the enabled feature set from tier and integration.
// Only enabled features are present in the returned map.
func Features(tier api.PlatformTier, integration api.IntegrationType) map[string]bool {
	f := map[string]bool{
		FeatureAISupport:         true,
		FeatureMultilingual:      true,
		FeatureAnalytics:         true,
		FeaturePrivacyProtection: true,
	}
	if integration != api.IntegrationWhatsAppOnly {
		f[FeatureAPIAccess] = true
	}
	if integration != api.IntegrationAPIOnly {
		f[FeatureWhatsApp] = true
	}
	if tier == api.TierProfessional || tier == api.TierEnterprise {
		f[FeatureAdvancedAnalytics] = true
	}
	if tier == api.TierEnterprise {
		f[FeatureDedicatedSupport] = true
		f[FeatureCustomKnowledgeBase] = true
	}
	return f
}

// FeatureNames returns the enabled feature names in sorted order.
func FeatureNames(features map[string]bool) []string {
	var out []string
	for name, on := range features {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
