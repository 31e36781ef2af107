package platform

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/storage"
	"github.com/trademate/supportdesk/pkg/storage/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedNow is a Wednesday afternoon in UTC.
var fixedNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{t: fixedNow}
	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	return New(memory.New(0), cfg, WithClock(clock.Now)), clock
}

func hdfcRequest() *api.OnboardPartnerRequest {
	return &api.OnboardPartnerRequest{
		PartnerID:       "hdfc_bank",
		CompanyName:     "HDFC Bank",
		BusinessType:    "bank",
		PlatformTier:    api.TierEnterprise,
		IntegrationType: api.IntegrationFull,
		GDPRRequired:    true,
		RBIRequired:     true,
		SEBIRequired:    true,
		WhatsApp: &api.WhatsAppConfig{
			BusinessNumber: "919876543210",
			AccessToken:    "demo_token_hdfc",
			VerifyToken:    "hdfc_verify_123",
			WebhookURL:     "https://hdfc.com/whatsapp-webhook",
			WebhookSecret:  "hdfc_secret_key",
		},
	}
}

func supportRequest(partner, query, lang string) *api.SupportRequest {
	return &api.SupportRequest{
		PartnerID:  partner,
		CustomerID: "customer_001",
		QueryText:  query,
		Language:   lang,
	}
}

// ---------------------------------------------------------------------------
// Onboarding
// ---------------------------------------------------------------------------

func TestOnboardPartner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.OnboardPartner(ctx, hdfcRequest())
	require.NoError(t, err)

	assert.Equal(t, api.StatusSuccess, resp.Status)
	assert.Equal(t, "Partner hdfc_bank onboarding initiated", resp.Message)
	assert.Equal(t, api.TierEnterprise, resp.PlatformTier)
	assert.EqualValues(t, 250_000, resp.MonthlyBaseCost)
	assert.Equal(t, 25_000, resp.IncludedInteractions)
	assert.True(t, resp.FeaturesEnabled[FeatureDedicatedSupport])
	assert.True(t, resp.FeaturesEnabled[FeatureWhatsApp])
	assert.True(t, api.ValidateAPIKey(resp.APIKey), "api key %q", resp.APIKey)

	stored, err := svc.Store().GetPartner(ctx, "hdfc_bank")
	require.NoError(t, err)
	assert.Equal(t, api.KeyLookup(resp.APIKey), stored.APIKeyLookup)
	assert.NotEqual(t, resp.APIKey, string(stored.APIKeyHash), "raw key must not be stored")
	assert.Equal(t, fixedNow.Unix(), stored.CreatedAt)
	assert.True(t, stored.Compliance.Any())

	p, err := svc.AuthenticateKey(ctx, resp.APIKey)
	require.NoError(t, err)
	assert.Equal(t, "hdfc_bank", p.ID)
}

func TestOnboardPartner_Defaults(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.OnboardPartner(context.Background(), &api.OnboardPartnerRequest{
		PartnerID:   "groww",
		CompanyName: "Groww",
	})
	require.NoError(t, err)
	assert.Equal(t, api.TierProfessional, resp.PlatformTier)
	assert.Equal(t, api.IntegrationFull, resp.IntegrationType)
	assert.EqualValues(t, 75_000, resp.MonthlyBaseCost)
}

func TestOnboardPartner_Conflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.OnboardPartner(ctx, hdfcRequest())
	require.NoError(t, err)

	_, err = svc.OnboardPartner(ctx, hdfcRequest())
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrorTypeConflict, apiErr.Type)
}

func TestOnboardPartner_ReplacesProvisional(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessSupportRequest(ctx, supportRequest("groww", "hello", "English"))
	require.NoError(t, err)

	p, err := svc.Store().GetPartner(ctx, "groww")
	require.NoError(t, err)
	require.True(t, p.Provisional)
	provisionedAt := p.CreatedAt

	clock.t = clock.t.Add(time.Hour)
	_, err = svc.OnboardPartner(ctx, &api.OnboardPartnerRequest{
		PartnerID:       "groww",
		CompanyName:     "Groww",
		IntegrationType: api.IntegrationAPIOnly,
	})
	require.NoError(t, err)

	p, err = svc.Store().GetPartner(ctx, "groww")
	require.NoError(t, err)
	assert.False(t, p.Provisional)
	assert.Equal(t, "Groww", p.CompanyName)
	assert.Equal(t, provisionedAt, p.CreatedAt)
	assert.False(t, p.FeaturesEnabled[FeatureWhatsApp])
}

func TestOnboardPartner_ConcurrentReplaceOfProvisional(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessSupportRequest(ctx, supportRequest("groww", "hello", "English"))
	require.NoError(t, err)

	const n = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		keys      []string
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.OnboardPartner(ctx, &api.OnboardPartnerRequest{
				PartnerID:   "groww",
				CompanyName: "Groww",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var apiErr *api.APIError
				if assert.ErrorAs(t, err, &apiErr) {
					assert.Equal(t, api.ErrorTypeConflict, apiErr.Type)
				}
				conflicts++
				return
			}
			keys = append(keys, resp.APIKey)
		}()
	}
	wg.Wait()

	require.Len(t, keys, 1, "exactly one onboarding may win")
	assert.Equal(t, n-1, conflicts)

	p, err := svc.AuthenticateKey(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, "groww", p.ID)
	assert.False(t, p.Provisional)
}

func TestPartners(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.OnboardPartner(ctx, hdfcRequest())
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Minute)
	_, err = svc.ProcessSupportRequest(ctx, supportRequest("groww", "hello", "English"))
	require.NoError(t, err)

	list, err := svc.Partners(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "hdfc_bank", list[0].ID)
	assert.False(t, list[0].Provisional)
	assert.Equal(t, "groww", list[1].ID)
	assert.True(t, list[1].Provisional)

	scoped, err := svc.Partners(storage.SetTenant(ctx, "groww"))
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "groww", scoped[0].ID)
}

func TestOnboardPartner_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OnboardPartner(context.Background(), &api.OnboardPartnerRequest{
		PartnerID:    "groww",
		CompanyName:  "Groww",
		PlatformTier: "platinum",
	})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "platform_tier", apiErr.Param)
}

func TestOnboardPartner_OtherTenant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := storage.SetTenant(context.Background(), "groww")

	_, err := svc.OnboardPartner(ctx, hdfcRequest())
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrorTypeForbidden, apiErr.Type)
}

func TestAuthenticateKey_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.OnboardPartner(ctx, hdfcRequest())
	require.NoError(t, err)

	// Same lookup prefix, different secret part.
	forged := resp.APIKey[:len(resp.APIKey)-1] + "x"
	if forged == resp.APIKey {
		forged = resp.APIKey[:len(resp.APIKey)-1] + "y"
	}
	_, err = svc.AuthenticateKey(ctx, forged)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.AuthenticateKey(ctx, "sk-foreign")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Tiers
// ---------------------------------------------------------------------------

func TestFeatures(t *testing.T) {
	tests := []struct {
		name        string
		tier        api.PlatformTier
		integration api.IntegrationType
		want        []string
		absent      []string
	}{
		{"starter api only", api.TierStarter, api.IntegrationAPIOnly,
			[]string{FeatureAISupport, FeatureAPIAccess},
			[]string{FeatureWhatsApp, FeatureAdvancedAnalytics, FeatureDedicatedSupport}},
		{"professional full", api.TierProfessional, api.IntegrationFull,
			[]string{FeatureWhatsApp, FeatureAPIAccess, FeatureAdvancedAnalytics},
			[]string{FeatureDedicatedSupport, FeatureCustomKnowledgeBase}},
		{"enterprise whatsapp only", api.TierEnterprise, api.IntegrationWhatsAppOnly,
			[]string{FeatureWhatsApp, FeatureDedicatedSupport, FeatureCustomKnowledgeBase},
			[]string{FeatureAPIAccess}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Features(tt.tier, tt.integration)
			for _, name := range tt.want {
				assert.True(t, f[name], "expected %s", name)
			}
			for _, name := range tt.absent {
				assert.False(t, f[name], "unexpected %s", name)
			}
		})
	}
}

func TestPlans(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, api.TierStarter, plans[0].Tier)
	assert.Equal(t, api.TierEnterprise, plans[2].Tier)
	assert.Equal(t, 1200, plans[2].RequestsPerMinute)

	_, ok := Plan("platinum")
	assert.False(t, ok)
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames(map[string]bool{"b": true, "a": true, "c": false})
	assert.Equal(t, []string{"a", "b"}, names)
}
