package api

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// PlatformTier is the commercial plan a partner is subscribed to.
type PlatformTier string

const (
	TierStarter      PlatformTier = "starter"
	TierProfessional PlatformTier = "professional"
	TierEnterprise   PlatformTier = "enterprise"
)

// IntegrationType selects which channels a partner has enabled.
type IntegrationType string

const (
	IntegrationFull         IntegrationType = "full_integration"
	IntegrationAPIOnly      IntegrationType = "api_only"
	IntegrationWhatsAppOnly IntegrationType = "whatsapp_only"
)

// Channel identifies where a support request originated.
type Channel string

const (
	ChannelAPI      Channel = "api"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelWeb      Channel = "web"
)

// PrivacyLevel is the handling label attached to a recorded interaction.
type PrivacyLevel string

const (
	PrivacyStandard PrivacyLevel = "standard"
	PrivacyEnhanced PrivacyLevel = "enhanced"
)

// Response status values shared by several endpoints.
const (
	StatusSuccess           = "success"
	StatusError             = "error"
	StatusProcessedWithMock = "processed_with_mock"
	StatusOperational       = "operational"
	StatusHealthy           = "healthy"
)

// Defaults applied to incoming requests.
const (
	DefaultLanguage  = "Hindi"
	DefaultTier      = TierProfessional
	DefaultChannel   = ChannelAPI
	DefaultPeriodDay = 7
)

// DefaultLanguages is used when onboarding omits the languages list.
var DefaultLanguages = []string{"Hindi", "English"}

// ---------------------------------------------------------------------------
// Partners
// ---------------------------------------------------------------------------

// WhatsAppConfig holds the WhatsApp Business settings a partner supplies.
type WhatsAppConfig struct {
	BusinessNumber string `json:"business_number,omitempty"`
	AccessToken    string `json:"access_token,omitempty"`
	VerifyToken    string `json:"verify_token,omitempty"`
	WebhookURL     string `json:"webhook_url,omitempty"`
	WebhookSecret  string `json:"webhook_secret,omitempty"`
}

// Compliance records which regulatory regimes a partner requires.
type Compliance struct {
	GDPR bool `json:"gdpr"`
	RBI  bool `json:"rbi"`
	SEBI bool `json:"sebi"`
}

// Any reports whether at least one regime is required.
func (c Compliance) Any() bool {
	return c.GDPR || c.RBI || c.SEBI
}

// OnboardPartnerRequest is the body of POST /partners/onboard.
type OnboardPartnerRequest struct {
	PartnerID       string          `json:"partner_id"`
	CompanyName     string          `json:"company_name"`
	BusinessType    string          `json:"business_type"`
	PlatformTier    PlatformTier    `json:"platform_tier,omitempty"`
	IntegrationType IntegrationType `json:"integration_type,omitempty"`
	Languages       []string        `json:"languages,omitempty"`
	KnowledgeBase   map[string]any  `json:"knowledge_base,omitempty"`
	WhatsApp        *WhatsAppConfig `json:"whatsapp_data,omitempty"`
	GDPRRequired    bool            `json:"gdpr_required,omitempty"`
	RBIRequired     bool            `json:"rbi_required,omitempty"`
	SEBIRequired    bool            `json:"sebi_required,omitempty"`
}

// ApplyDefaults fills optional fields with their documented defaults.
func (r *OnboardPartnerRequest) ApplyDefaults() {
	if r.PlatformTier == "" {
		r.PlatformTier = DefaultTier
	}
	if r.IntegrationType == "" {
		r.IntegrationType = IntegrationFull
	}
	if len(r.Languages) == 0 {
		r.Languages = append([]string(nil), DefaultLanguages...)
	}
	if r.KnowledgeBase == nil {
		r.KnowledgeBase = map[string]any{}
	}
}

// Partner is the stored record of an onboarded (or auto-provisioned) partner.
type Partner struct {
	ID              string          `json:"partner_id"`
	CompanyName     string          `json:"company_name"`
	BusinessType    string          `json:"business_type,omitempty"`
	Tier            PlatformTier    `json:"platform_tier"`
	Integration     IntegrationType `json:"integration_type"`
	Languages       []string        `json:"languages"`
	KnowledgeBase   map[string]any  `json:"knowledge_base,omitempty"`
	WhatsApp        *WhatsAppConfig `json:"-"`
	Compliance      Compliance      `json:"compliance"`
	FeaturesEnabled map[string]bool `json:"features_enabled"`
	Provisional     bool            `json:"provisional,omitempty"`
	CreatedAt       int64           `json:"created_at"`

	// APIKeyLookup and APIKeyHash identify the partner's issued key. The raw
	// key is only returned once, at onboarding time.
	APIKeyLookup string `json:"-"`
	APIKeyHash   []byte `json:"-"`
}

// OnboardPartnerResponse is returned by POST /partners/onboard.
type OnboardPartnerResponse struct {
	Status               string          `json:"status"`
	Message              string          `json:"message"`
	PartnerID            string          `json:"partner_id"`
	PlatformTier         PlatformTier    `json:"platform_tier"`
	IntegrationType      IntegrationType `json:"integration_type"`
	MonthlyBaseCost      int64           `json:"monthly_base_cost"`
	IncludedInteractions int             `json:"included_interactions"`
	FeaturesEnabled      map[string]bool `json:"features_enabled"`
	APIKey               string          `json:"api_key,omitempty"`
}

// ---------------------------------------------------------------------------
// Support
// ---------------------------------------------------------------------------

// SupportRequest is the body of POST /support/process and
// POST /demo/market-analysis.
type SupportRequest struct {
	PartnerID  string         `json:"partner_id"`
	CustomerID string         `json:"customer_id"`
	QueryText  string         `json:"query_text"`
	Language   string         `json:"language,omitempty"`
	Channel    Channel        `json:"channel,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// ApplyDefaults fills optional fields with their documented defaults.
func (r *SupportRequest) ApplyDefaults() {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Channel == "" {
		r.Channel = DefaultChannel
	}
	if r.Context == nil {
		r.Context = map[string]any{}
	}
}

// Interaction is one processed support request.
type Interaction struct {
	ID             string       `json:"interaction_id"`
	PartnerID      string       `json:"partner_id"`
	CustomerID     string       `json:"customer_id"`
	Channel        Channel      `json:"channel"`
	Language       string       `json:"language"`
	QueryText      string       `json:"query_text"`
	Intent         string       `json:"intent"`
	ResponseText   string       `json:"response_text"`
	Escalated      bool         `json:"escalated"`
	ProcessingTime float64      `json:"processing_time"`
	PrivacyLevel   PrivacyLevel `json:"privacy_level"`
	CreatedAt      int64        `json:"created_at"`
}

// SupportResponse is returned by POST /support/process.
type SupportResponse struct {
	Status           string  `json:"status"`
	InteractionID    string  `json:"interaction_id,omitempty"`
	Response         string  `json:"response"`
	Language         string  `json:"language"`
	Intent           string  `json:"intent"`
	ProcessingTime   float64 `json:"processing_time"`
	Escalated        bool    `json:"escalated"`
	PrivacyProtected bool    `json:"privacy_protected"`
	Note             string  `json:"note,omitempty"`
}

// MarketAnalysis describes the advice category attached to a market analysis.
type MarketAnalysis struct {
	Category              string  `json:"category"`
	Confidence            float64 `json:"confidence"`
	IndianMarketExpertise bool    `json:"indian_market_expertise"`
	RegulatoryCompliant   bool    `json:"regulatory_compliant"`
}

// MarketAnalysisResponse is returned by POST /demo/market-analysis.
type MarketAnalysisResponse struct {
	Status         string         `json:"status"`
	Query          string         `json:"query"`
	Language       string         `json:"language"`
	Intent         string         `json:"intent"`
	Response       string         `json:"response"`
	MarketAnalysis MarketAnalysis `json:"market_analysis"`
	ProcessingTime float64        `json:"processing_time"`
	Escalated      bool           `json:"escalated"`
}

// FallbackResponse is returned with HTTP 200 when the market analysis
// endpoint fails after the request was accepted.
type FallbackResponse struct {
	Status           string `json:"status"`
	Error            string `json:"error"`
	FallbackResponse string `json:"fallback_response"`
}

// ---------------------------------------------------------------------------
// Reporting
// ---------------------------------------------------------------------------

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Version   string  `json:"version"`
	Timestamp float64 `json:"timestamp"`
}

// PlatformStatus is returned by GET /platform/status.
type PlatformStatus struct {
	PlatformStatus    string            `json:"platform_status"`
	ActivePartners    int               `json:"active_partners"`
	TotalInteractions int               `json:"total_interactions"`
	Services          map[string]string `json:"services"`
}

// AnalyticsReport is returned by GET /partners/{partner_id}/analytics.
type AnalyticsReport struct {
	PartnerID      string           `json:"partner_id"`
	PeriodDays     int              `json:"period_days"`
	Summary        AnalyticsSummary `json:"summary"`
	Distributions  Distributions    `json:"distributions"`
	Performance    Performance      `json:"performance"`
	BusinessImpact BusinessImpact   `json:"business_impact"`
	Privacy        PrivacyReport    `json:"privacy"`
}

// AnalyticsSummary aggregates interactions over the reporting window.
type AnalyticsSummary struct {
	TotalInteractions int     `json:"total_interactions"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	EscalationRate    float64 `json:"escalation_rate"`
	SatisfactionScore float64 `json:"satisfaction_score"`
}

// Distributions holds percentage shares keyed by language, channel, and intent.
type Distributions struct {
	Languages map[string]int `json:"languages"`
	Channels  map[string]int `json:"channels"`
	Intents   map[string]int `json:"intents"`
}

// Performance holds service level figures.
type Performance struct {
	SLACompliance      float64 `json:"sla_compliance"`
	AutomationRate     float64 `json:"automation_rate"`
	CostPerInteraction float64 `json:"cost_per_interaction"`
}

// BusinessImpact holds the marketing comparison figures.
type BusinessImpact struct {
	CostReductionPercent            int    `json:"cost_reduction_percent"`
	ResponseTimeImprovement         string `json:"response_time_improvement"`
	CustomerSatisfactionImprovement string `json:"customer_satisfaction_improvement"`
}

// PrivacyReport summarizes privacy handling and compliance flags.
type PrivacyReport struct {
	Summary    PrivacySummary    `json:"privacy_summary"`
	Compliance ComplianceMetrics `json:"compliance_metrics"`
}

// PrivacySummary carries the privacy labels for a partner.
type PrivacySummary struct {
	PrivacyTier                  PrivacyLevel `json:"privacy_tier"`
	ZeroKnowledgeProofsGenerated int          `json:"zero_knowledge_proofs_generated"`
	PrivacyViolations            int          `json:"privacy_violations"`
	ComplianceScore              float64      `json:"compliance_score"`
}

// ComplianceMetrics mirrors the partner's compliance requirements.
type ComplianceMetrics struct {
	GDPRCompliance bool `json:"gdpr_compliance"`
	RBICompliance  bool `json:"rbi_compliance"`
	SEBICompliance bool `json:"sebi_compliance"`
}

// Dashboard is returned by GET /partners/{partner_id}/dashboard.
type Dashboard struct {
	PartnerInfo     PartnerInfo       `json:"partner_info"`
	RealTimeMetrics RealTimeMetrics   `json:"real_time_metrics"`
	BillingSummary  BillingSummary    `json:"billing_summary"`
	ServiceStatus   map[string]string `json:"service_status"`
}

// PartnerInfo is the identity block of the dashboard.
type PartnerInfo struct {
	CompanyName     string          `json:"company_name"`
	PlatformTier    PlatformTier    `json:"platform_tier"`
	IntegrationType IntegrationType `json:"integration_type"`
}

// RealTimeMetrics covers the current UTC day.
type RealTimeMetrics struct {
	InteractionsToday int     `json:"interactions_today"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	EscalationRate    float64 `json:"escalation_rate"`
	SystemStatus      string  `json:"system_status"`
	APIUptime         string  `json:"api_uptime"`
}

// BillingSummary covers the current UTC calendar month.
type BillingSummary struct {
	CurrentUsage    int     `json:"current_usage"`
	MonthlyLimit    int     `json:"monthly_limit"`
	UsagePercentage float64 `json:"usage_percentage"`
	EstimatedCost   int64   `json:"estimated_cost"`
}

// ROISummary compares platform cost against traditional support cost.
type ROISummary struct {
	TotalInteractions             int     `json:"total_interactions"`
	TraditionalCostPerInteraction int64   `json:"traditional_cost_per_interaction"`
	PlatformCostPerInteraction    int64   `json:"platform_cost_per_interaction"`
	SavingsPerInteraction         int64   `json:"savings_per_interaction"`
	TotalSavings                  int64   `json:"total_savings"`
	CostReductionPercent          float64 `json:"cost_reduction_percent"`
}

// ---------------------------------------------------------------------------
// WhatsApp webhooks
// ---------------------------------------------------------------------------

// WhatsAppWebhook is the notification body posted by the WhatsApp Cloud API.
type WhatsAppWebhook struct {
	Object string         `json:"object,omitempty"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry groups changes for one WhatsApp Business account.
type WebhookEntry struct {
	ID      string          `json:"id,omitempty"`
	Changes []WebhookChange `json:"changes,omitempty"`
}

// WebhookChange is a single field change notification.
type WebhookChange struct {
	Field string       `json:"field,omitempty"`
	Value WebhookValue `json:"value"`
}

// WebhookValue carries the messages for a change.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product,omitempty"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
}

// WebhookContact identifies the customer who sent a message.
type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// WebhookMessage is one inbound WhatsApp message.
type WebhookMessage struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	Timestamp string       `json:"timestamp,omitempty"`
	Type      string       `json:"type"`
	Text      *WebhookText `json:"text,omitempty"`
}

// WebhookText is the payload of a text message.
type WebhookText struct {
	Body string `json:"body"`
}

// WebhookReply is the support answer produced for one inbound message.
type WebhookReply struct {
	MessageID     string `json:"message_id"`
	To            string `json:"to"`
	InteractionID string `json:"interaction_id,omitempty"`
	Intent        string `json:"intent,omitempty"`
	Text          string `json:"text,omitempty"`

	// Error is set when the message could not be processed; the other
	// messages in the notification are still answered.
	Error string `json:"error,omitempty"`
}

// WebhookResult is returned by POST /whatsapp/webhook/{partner_id}.
type WebhookResult struct {
	Status            string         `json:"status"`
	PartnerID         string         `json:"partner_id"`
	MessagesProcessed int            `json:"messages_processed"`
	Replies           []WebhookReply `json:"replies"`
	Response          string         `json:"response"`
}
