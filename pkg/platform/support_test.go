package platform

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/storage"
)

func TestProcessSupportRequest_AutoProvisions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in, err := svc.ProcessSupportRequest(ctx, supportRequest("zerodha", "SIP में निवेश कैसे करें?", ""))
	require.NoError(t, err)

	assert.True(t, api.ValidateInteractionID(in.ID))
	assert.Equal(t, "mutual_fund_query", in.Intent)
	assert.Equal(t, "Hindi", in.Language)
	assert.Equal(t, api.ChannelAPI, in.Channel)
	assert.Equal(t, api.PrivacyStandard, in.PrivacyLevel)
	assert.False(t, in.Escalated)
	assert.Equal(t, fixedNow.Unix(), in.CreatedAt)
	assert.GreaterOrEqual(t, in.ProcessingTime, 0.0)

	p, err := svc.Store().GetPartner(ctx, "zerodha")
	require.NoError(t, err)
	assert.True(t, p.Provisional)
	assert.Equal(t, "Partner zerodha", p.CompanyName)
	assert.Equal(t, api.TierProfessional, p.Tier)

	list, err := svc.Store().ListInteractions(ctx, "zerodha", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, in.ID, list[0].ID)
}

func TestProcessSupportRequest_EnhancedPrivacy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.OnboardPartner(ctx, hdfcRequest())
	require.NoError(t, err)

	in, err := svc.ProcessSupportRequest(ctx, supportRequest("hdfc_bank", "मेरे खाते का बैलेंस क्या है?", "Hindi"))
	require.NoError(t, err)
	assert.Equal(t, api.PrivacyEnhanced, in.PrivacyLevel)
	assert.Equal(t, "account_query", in.Intent)
	assert.Contains(t, in.ResponseText, "खाता सहायता")
}

func TestProcessSupportRequest_Escalation(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		context map[string]any
		want    bool
	}{
		{"plain query", "what is sip", nil, false},
		{"english keyword", "I want to file a COMPLAINT", nil, true},
		{"hindi keyword", "मेरे साथ धोखाधड़ी हुई है", nil, true},
		{"context flag", "hello", map[string]any{"escalate": true}, true},
		{"context flag false", "hello", map[string]any{"escalate": false}, false},
		{"context flag wrong type", "hello", map[string]any{"escalate": "yes"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			req := supportRequest("groww", tt.query, "English")
			req.Context = tt.context
			in, err := svc.ProcessSupportRequest(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Escalated)
		})
	}
}

func TestProcessSupportRequest_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProcessSupportRequest(context.Background(), supportRequest("groww", "   ", "English"))
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "query_text", apiErr.Param)

	n, _ := svc.Store().CountInteractions(context.Background())
	assert.Zero(t, n)
}

func TestProcessSupportRequest_OtherTenant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := storage.SetTenant(context.Background(), "hdfc_bank")

	_, err := svc.ProcessSupportRequest(ctx, supportRequest("groww", "hello", "English"))
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrorTypeForbidden, apiErr.Type)
}

func TestSupportResponse(t *testing.T) {
	in := &api.Interaction{
		ID:             "int_abcdefghijklmnopqrstuvwx",
		ResponseText:   "text",
		Language:       "English",
		Intent:         "tax_query",
		ProcessingTime: 0.01,
		Escalated:      true,
		PrivacyLevel:   api.PrivacyEnhanced,
	}
	resp := SupportResponse(in)
	assert.Equal(t, api.StatusSuccess, resp.Status)
	assert.Equal(t, in.ID, resp.InteractionID)
	assert.True(t, resp.PrivacyProtected)
	assert.True(t, resp.Escalated)
}

func TestMockSupportResponse(t *testing.T) {
	resp := MockSupportResponse(&api.SupportRequest{QueryText: "बैलेंस"})
	assert.Equal(t, api.StatusProcessedWithMock, resp.Status)
	assert.Equal(t, "Hindi", resp.Language)
	assert.Equal(t, "general_query", resp.Intent)
	assert.InDelta(t, 0.05, resp.ProcessingTime, 1e-9)
	assert.True(t, strings.HasPrefix(resp.Response, "आपका प्रश्न समझ में आया। बैलेंस"))
	assert.Equal(t, "Mock response due to missing dependencies", resp.Note)
}

func TestMarketAnalysis(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.MarketAnalysis(ctx, supportRequest("hdfc_bank",
		"80C में कौन से options हैं? Tax saving के लिए क्या करूं?", "Hindi"))
	require.NoError(t, err)

	assert.Equal(t, api.StatusSuccess, resp.Status)
	assert.Equal(t, "tax_query", resp.Intent)
	assert.Contains(t, resp.Response, "टैक्स सेविंग गाइड")
	assert.Equal(t, "financial_advice", resp.MarketAnalysis.Category)
	assert.InDelta(t, 0.95, resp.MarketAnalysis.Confidence, 1e-9)
	assert.True(t, resp.MarketAnalysis.IndianMarketExpertise)
	assert.True(t, resp.MarketAnalysis.RegulatoryCompliant)
	assert.InDelta(t, 0.8, resp.ProcessingTime, 1e-9)

	// Market analysis records nothing.
	n, _ := svc.Store().CountInteractions(ctx)
	assert.Zero(t, n)
	p, _ := svc.Store().CountPartners(ctx)
	assert.Zero(t, p)
}

func TestMarketAnalysis_EchoesRequestedLanguage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		lang     string
		want     string
		wantText string
	}{
		{"hi-IN", "hi-IN", "म्यूचुअल फंड"},
		{"en-US", "en-US", "Mutual Fund"},
		{"", "Hindi", "म्यूचुअल फंड"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			resp, err := svc.MarketAnalysis(ctx, supportRequest("groww", "SIP plan", tt.lang))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Language)
			assert.Contains(t, resp.Response, tt.wantText)
		})
	}
}

func TestMarketAnalysisFallback(t *testing.T) {
	resp := MarketAnalysisFallback(assert.AnError)
	assert.Equal(t, api.StatusError, resp.Status)
	assert.Equal(t, assert.AnError.Error(), resp.Error)
	assert.Equal(t, "हमारी तकनीकी टीम इस समस्या को ठीक कर रही है। कृपया बाद में कोशिश करें।", resp.FallbackResponse)
}
