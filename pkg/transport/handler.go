package transport

import (
	"context"

	"github.com/trademate/supportdesk/pkg/api"
)

// SupportPlatform is the set of platform operations exposed over HTTP.
// *platform.Service implements it.
type SupportPlatform interface {
	// Health reports liveness information.
	Health() *api.HealthStatus

	// Ready returns an error when the backing store is unreachable.
	Ready(ctx context.Context) error

	// Status reports partner and interaction counts.
	Status(ctx context.Context) (*api.PlatformStatus, error)

	OnboardPartner(ctx context.Context, req *api.OnboardPartnerRequest) (*api.OnboardPartnerResponse, error)
	ProcessSupportRequest(ctx context.Context, req *api.SupportRequest) (*api.Interaction, error)
	MarketAnalysis(ctx context.Context, req *api.SupportRequest) (*api.MarketAnalysisResponse, error)

	Analytics(ctx context.Context, partnerID string, days int) (*api.AnalyticsReport, error)
	Dashboard(ctx context.Context, partnerID string) (*api.Dashboard, error)

	// VerifyWebhook answers the WhatsApp subscription handshake with the
	// numeric challenge.
	VerifyWebhook(ctx context.Context, partnerID, mode, token, challenge string) (int64, error)

	// HandleWebhook processes a raw WhatsApp notification body.
	HandleWebhook(ctx context.Context, partnerID string, payload []byte, signature string) (*api.WebhookResult, error)
}
