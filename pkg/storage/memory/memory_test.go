package memory

import (
	"context"
	"testing"

	"github.com/trademate/supportdesk/pkg/storage"
	"github.com/trademate/supportdesk/pkg/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New(0)
	})
}

func TestEviction(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	for _, ts := range []int64{1, 2, 3} {
		if err := s.SaveInteraction(ctx, storagetest.NewInteraction("groww", ts)); err != nil {
			t.Fatalf("SaveInteraction: %v", err)
		}
	}

	got, _ := s.ListInteractions(ctx, "groww", 0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].CreatedAt != 2 {
		t.Errorf("oldest retained = %d, want 2", got[0].CreatedAt)
	}
}

func TestReturnedPartnerIsCopy(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	if err := s.CreatePartner(ctx, storagetest.NewPartner("groww", "", 1)); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetPartner(ctx, "groww")
	got.Languages[0] = "Tamil"
	got.FeaturesEnabled["ai_support"] = false

	again, _ := s.GetPartner(ctx, "groww")
	if again.Languages[0] != "Hindi" {
		t.Error("Languages mutated through returned value")
	}
	if !again.FeaturesEnabled["ai_support"] {
		t.Error("FeaturesEnabled mutated through returned value")
	}
}

func TestUpsertKeyConflict(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	s.CreatePartner(ctx, storagetest.NewPartner("hdfc_bank", "samekey1", 1))
	if err := s.UpsertPartner(ctx, storagetest.NewPartner("groww", "samekey1", 2)); err != storage.ErrConflict {
		t.Errorf("got %v, want ErrConflict", err)
	}
}
