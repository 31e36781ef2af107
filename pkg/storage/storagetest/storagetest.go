// Package storagetest provides a behavioral test suite shared by every
// storage.Store adapter.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/storage"
)

// NewPartner returns a fully populated partner fixture.
func NewPartner(id, lookup string, createdAt int64) *api.Partner {
	return &api.Partner{
		ID:            id,
		CompanyName:   "Company " + id,
		BusinessType:  "fintech",
		Tier:          api.TierEnterprise,
		Integration:   api.IntegrationFull,
		Languages:     []string{"Hindi", "English"},
		KnowledgeBase: map[string]any{"products": "savings"},
		WhatsApp: &api.WhatsAppConfig{
			BusinessNumber: "919876543210",
			VerifyToken:    id + "_token",
			WebhookSecret:  "secret",
		},
		Compliance:      api.Compliance{RBI: true},
		FeaturesEnabled: map[string]bool{"ai_support": true},
		CreatedAt:       createdAt,
		APIKeyLookup:    lookup,
		APIKeyHash:      []byte("$2a$04$hash"),
	}
}

// NewInteraction returns an interaction fixture for partnerID.
func NewInteraction(partnerID string, createdAt int64) *api.Interaction {
	return &api.Interaction{
		ID:             api.NewInteractionID(),
		PartnerID:      partnerID,
		CustomerID:     "customer_001",
		Channel:        api.ChannelAPI,
		Language:       "Hindi",
		QueryText:      "SIP कैसे शुरू करें?",
		Intent:         "mutual_fund_query",
		ResponseText:   "advice",
		ProcessingTime: 0.01,
		PrivacyLevel:   api.PrivacyStandard,
		CreatedAt:      createdAt,
	}
}

// Run exercises the storage.Store contract against stores produced by
// newStore. Each subtest receives a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("CreateAndGetPartner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		want := NewPartner("hdfc_bank", "AbCdEfGh", 1000)
		if err := s.CreatePartner(ctx, want); err != nil {
			t.Fatalf("CreatePartner: %v", err)
		}

		got, err := s.GetPartner(ctx, "hdfc_bank")
		if err != nil {
			t.Fatalf("GetPartner: %v", err)
		}
		if got.CompanyName != want.CompanyName || got.Tier != want.Tier {
			t.Errorf("got %+v", got)
		}
		if len(got.Languages) != 2 || got.Languages[0] != "Hindi" {
			t.Errorf("Languages = %v", got.Languages)
		}
		if got.WhatsApp == nil || got.WhatsApp.VerifyToken != "hdfc_bank_token" {
			t.Errorf("WhatsApp = %+v", got.WhatsApp)
		}
		if !got.Compliance.RBI || got.Compliance.GDPR {
			t.Errorf("Compliance = %+v", got.Compliance)
		}
		if string(got.APIKeyHash) != "$2a$04$hash" {
			t.Errorf("APIKeyHash = %q", got.APIKeyHash)
		}
		if got.KnowledgeBase["products"] != "savings" {
			t.Errorf("KnowledgeBase = %v", got.KnowledgeBase)
		}
	})

	t.Run("CreateDuplicatePartner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.CreatePartner(ctx, NewPartner("groww", "aaaaaaaa", 1)); err != nil {
			t.Fatal(err)
		}
		err := s.CreatePartner(ctx, NewPartner("groww", "bbbbbbbb", 2))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("duplicate ID: got %v, want ErrConflict", err)
		}
		err = s.CreatePartner(ctx, NewPartner("zerodha", "aaaaaaaa", 3))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("duplicate key lookup: got %v, want ErrConflict", err)
		}
	})

	t.Run("UpsertReplacesProvisional", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p := NewPartner("groww", "", 1)
		p.Provisional = true
		if err := s.UpsertPartner(ctx, p); err != nil {
			t.Fatal(err)
		}

		p = NewPartner("groww", "newkey12", 99)
		p.Tier = api.TierStarter
		if err := s.UpsertPartner(ctx, p); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetPartner(ctx, "groww")
		if err != nil {
			t.Fatal(err)
		}
		if got.Provisional || got.Tier != api.TierStarter {
			t.Errorf("partner not replaced: %+v", got)
		}
		if got.CreatedAt != 1 {
			t.Errorf("CreatedAt = %d, want 1 (kept from provisional record)", got.CreatedAt)
		}
		if n, _ := s.CountPartners(ctx); n != 1 {
			t.Errorf("CountPartners = %d, want 1", n)
		}
		byKey, err := s.GetPartnerByKeyPrefix(ctx, "newkey12")
		if err != nil || byKey.ID != "groww" {
			t.Errorf("GetPartnerByKeyPrefix = %v, %v", byKey, err)
		}
	})

	t.Run("UpsertKeepsOnboardedPartner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.UpsertPartner(ctx, NewPartner("groww", "firstkey", 1)); err != nil {
			t.Fatal(err)
		}
		second := NewPartner("groww", "secondky", 2)
		second.Tier = api.TierStarter
		if err := s.UpsertPartner(ctx, second); !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("second upsert: got %v, want ErrConflict", err)
		}

		got, err := s.GetPartner(ctx, "groww")
		if err != nil {
			t.Fatal(err)
		}
		if got.Tier != api.TierEnterprise || got.APIKeyLookup != "firstkey" {
			t.Errorf("onboarded partner overwritten: %+v", got)
		}
		if _, err := s.GetPartnerByKeyPrefix(ctx, "secondky"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("rejected key resolvable: %v", err)
		}
	})

	t.Run("PartnerNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.GetPartner(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetPartner: got %v, want ErrNotFound", err)
		}
		if _, err := s.GetPartnerByKeyPrefix(ctx, "zzzzzzzz"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetPartnerByKeyPrefix: got %v, want ErrNotFound", err)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.CreatePartner(ctx, NewPartner("hdfc_bank", "", 1)); err != nil {
			t.Fatal(err)
		}
		if err := s.CreatePartner(ctx, NewPartner("groww", "", 2)); err != nil {
			t.Fatal(err)
		}

		scoped := storage.SetTenant(ctx, "groww")
		if _, err := s.GetPartner(scoped, "hdfc_bank"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("cross-tenant GetPartner: got %v, want ErrNotFound", err)
		}
		if _, err := s.GetPartner(scoped, "groww"); err != nil {
			t.Errorf("own GetPartner: %v", err)
		}
		list, err := s.ListPartners(scoped)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].ID != "groww" {
			t.Errorf("scoped ListPartners = %d partners", len(list))
		}
		if err := s.SaveInteraction(scoped, NewInteraction("hdfc_bank", 5)); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("cross-tenant SaveInteraction: got %v, want ErrNotFound", err)
		}
	})

	t.Run("ListPartnersOrdered", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i, id := range []string{"charlie", "alpha", "bravo"} {
			if err := s.CreatePartner(ctx, NewPartner(id, "", int64(10-i))); err != nil {
				t.Fatal(err)
			}
		}
		list, err := s.ListPartners(ctx)
		if err != nil {
			t.Fatal(err)
		}
		var ids []string
		for _, p := range list {
			ids = append(ids, p.ID)
		}
		want := []string{"bravo", "alpha", "charlie"}
		if len(ids) != len(want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("ids = %v, want %v", ids, want)
			}
		}
	})

	t.Run("Interactions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, ts := range []int64{100, 200, 300} {
			if err := s.SaveInteraction(ctx, NewInteraction("groww", ts)); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.SaveInteraction(ctx, NewInteraction("hdfc_bank", 250)); err != nil {
			t.Fatal(err)
		}

		got, err := s.ListInteractions(ctx, "groww", 200)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].CreatedAt != 200 || got[1].CreatedAt != 300 {
			t.Errorf("order = %d,%d, want 200,300", got[0].CreatedAt, got[1].CreatedAt)
		}
		if got[0].Intent != "mutual_fund_query" || got[0].Channel != api.ChannelAPI {
			t.Errorf("fields not round-tripped: %+v", got[0])
		}

		n, err := s.CountInteractions(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if n != 4 {
			t.Errorf("CountInteractions = %d, want 4", n)
		}
	})

	t.Run("HealthCheck", func(t *testing.T) {
		s := newStore(t)
		if err := s.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck: %v", err)
		}
	})
}
