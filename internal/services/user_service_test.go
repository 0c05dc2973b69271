package services

import (
	"context"
	"testing"

	"butce/internal/core"
	"butce/internal/store/memory"
)

func TestLinkPartner_GeneratesSharedID(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra", FullName: "Esra"})
	seedUser(t, st, core.User{Username: "emre", FullName: "Emre"})

	svc := NewUserService(st, nil)
	linked, err := svc.LinkPartner(context.Background(), "esra", "emre", NewBudgetService(st, nil))
	if err != nil {
		t.Fatalf("LinkPartner() error = %v", err)
	}

	if linked.PartnerUsername != "emre" {
		t.Errorf("partner = %q, want emre", linked.PartnerUsername)
	}
	if len(linked.PartnershipID) != 32 {
		t.Errorf("partnership id = %q, want 32 hex chars", linked.PartnershipID)
	}

	other, err := st.GetUser(context.Background(), "emre")
	if err != nil {
		t.Fatal(err)
	}
	if other.PartnerUsername != "esra" {
		t.Errorf("reverse link missing: partner = %q", other.PartnerUsername)
	}
	if other.PartnershipID != linked.PartnershipID {
		t.Errorf("partnership ids differ: %q vs %q", other.PartnershipID, linked.PartnershipID)
	}
}

func TestLinkPartner_ReusesExistingID(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra", PartnershipID: "p-old"})
	seedUser(t, st, core.User{Username: "emre"})

	svc := NewUserService(st, nil)
	linked, err := svc.LinkPartner(context.Background(), "esra", "emre", nil)
	if err != nil {
		t.Fatalf("LinkPartner() error = %v", err)
	}

	if linked.PartnershipID != "p-old" {
		t.Errorf("partnership id = %q, want reused p-old", linked.PartnershipID)
	}
}

func TestLinkPartner_ResyncsBudgetOverMergedAssets(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})
	seedUser(t, st, core.User{Username: "emre"})
	seedAsset(t, st, core.Asset{Username: "esra", Name: "a", Category: core.CategoryCash, Value: core.Money{Cents: 500000}})
	seedAsset(t, st, core.Asset{Username: "emre", Name: "b", Category: core.CategoryCash, Value: core.Money{Cents: 200000}})

	svc := NewUserService(st, nil)
	budgets := NewBudgetService(st, nil)
	if _, err := svc.LinkPartner(context.Background(), "esra", "emre", budgets); err != nil {
		t.Fatalf("LinkPartner() error = %v", err)
	}

	// Only esra's own cash is in the shared sum: emre's asset is neither
	// owned by esra nor stamped with the new partnership id.
	if got := budgetCents(t, st, "esra"); got != 500000 {
		t.Errorf("esra budget = %d, want 500000", got)
	}
	if got := budgetCents(t, st, "emre"); got != 500000 {
		t.Errorf("emre budget = %d, want mirrored 500000", got)
	}
}

func TestLinkPartner_RejectsSelf(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})

	svc := NewUserService(st, nil)
	if _, err := svc.LinkPartner(context.Background(), "esra", "esra", nil); err != core.ErrSelfPartner {
		t.Errorf("LinkPartner(self) error = %v, want ErrSelfPartner", err)
	}
}

func TestLinkPartner_UnknownUser(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})

	svc := NewUserService(st, nil)
	if _, err := svc.LinkPartner(context.Background(), "esra", "kimse", nil); err == nil {
		t.Fatal("LinkPartner() should fail when the partner does not exist")
	}
}

func TestRegister_Validates(t *testing.T) {
	svc := NewUserService(memory.New(), nil)
	if _, err := svc.Register(context.Background(), core.User{}); err != core.ErrMissingUsername {
		t.Errorf("Register(empty) error = %v, want ErrMissingUsername", err)
	}
}

func TestSetPortfolioInBudget(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})

	svc := NewUserService(st, nil)
	user, err := svc.SetPortfolioInBudget(context.Background(), "esra", true)
	if err != nil {
		t.Fatalf("SetPortfolioInBudget() error = %v", err)
	}
	if !user.PortfolioInBudget {
		t.Error("toggle should be on")
	}

	user, err = svc.SetPortfolioInBudget(context.Background(), "esra", false)
	if err != nil {
		t.Fatal(err)
	}
	if user.PortfolioInBudget {
		t.Error("toggle should be off again")
	}
}
