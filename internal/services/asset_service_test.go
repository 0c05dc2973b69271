package services

import (
	"context"
	"testing"

	"butce/internal/core"
	"butce/internal/store/memory"
)

func newAssetService(st *memory.Store, dispatcher *recordingDispatcher) *AssetService {
	budgets := NewBudgetService(st, nil)
	if dispatcher == nil {
		return NewAssetService(st, budgets, nil)
	}
	return NewAssetService(st, budgets, dispatcher)
}

func TestCreateAsset_CashDrivesBudget(t *testing.T) {
	st := memory.New()
	seedCouple(t, st)
	dispatcher := &recordingDispatcher{}
	svc := newAssetService(st, dispatcher)

	created, err := svc.CreateAsset(context.Background(), core.Asset{
		Username: "esra",
		Name:     "düğün hesabı",
		Category: core.CategoryCash,
		Value:    core.Money{Cents: 500000},
	})
	if err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}

	if created.PartnershipID != "p1" {
		t.Errorf("partnership id not stamped from owner: %q", created.PartnershipID)
	}
	if got := budgetCents(t, st, "esra"); got != 500000 {
		t.Errorf("esra budget = %d, want 500000", got)
	}
	if got := budgetCents(t, st, "emre"); got != 500000 {
		t.Errorf("emre budget = %d, want 500000", got)
	}
	if dispatcher.count("esra") != 1 || dispatcher.count("emre") != 1 {
		t.Errorf("both partners should be notified, got %v", dispatcher.notified)
	}
}

func TestCreateAsset_NonCashLeavesBudgetAlone(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})
	svc := newAssetService(st, nil)

	if err := st.UpsertBudget(context.Background(), "esra", 250000, "esra"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreateAsset(context.Background(), core.Asset{
		Username: "esra",
		Name:     "çeyrek altın",
		Category: "Altın",
		Value:    core.Money{Cents: 990000},
	})
	if err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}

	if got := budgetCents(t, st, "esra"); got != 250000 {
		t.Errorf("budget = %d, want unchanged 250000 after non-cash create", got)
	}
}

func TestCreateAsset_Invalid(t *testing.T) {
	svc := newAssetService(memory.New(), nil)

	tests := []struct {
		name  string
		asset core.Asset
		want  error
	}{
		{"missing username", core.Asset{Name: "x", Category: "Nakit"}, core.ErrMissingUsername},
		{"empty category", core.Asset{Username: "esra", Name: "x"}, core.ErrEmptyCategory},
		{"empty name", core.Asset{Username: "esra", Category: "Nakit"}, core.ErrEmptyName},
		{"negative value", core.Asset{Username: "esra", Name: "x", Category: "Nakit", Value: core.Money{Cents: -1}}, core.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateAsset(context.Background(), tt.asset); err != tt.want {
				t.Errorf("CreateAsset() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateAsset_CategoryChangeResyncsBothWays(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})
	svc := newAssetService(st, nil)

	cash, err := svc.CreateAsset(context.Background(), core.Asset{
		Username: "esra", Name: "nakit", Category: core.CategoryCash, Value: core.Money{Cents: 400000},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Cash -> non-cash: the value leaves the budget.
	cash.Category = "Döviz"
	if _, err := svc.UpdateAsset(context.Background(), cash); err != nil {
		t.Fatalf("UpdateAsset() error = %v", err)
	}
	if got := budgetCents(t, st, "esra"); got != 0 {
		t.Errorf("budget after cash->non-cash = %d, want 0", got)
	}

	// Non-cash -> cash: the value comes back.
	cash.Category = core.CategoryCash
	if _, err := svc.UpdateAsset(context.Background(), cash); err != nil {
		t.Fatalf("UpdateAsset() error = %v", err)
	}
	if got := budgetCents(t, st, "esra"); got != 400000 {
		t.Errorf("budget after non-cash->cash = %d, want 400000", got)
	}
}

func TestDeleteAsset_SoleCashDropsBudgetToZero(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})
	svc := newAssetService(st, nil)

	created, err := svc.CreateAsset(context.Background(), core.Asset{
		Username: "esra", Name: "nakit", Category: core.CategoryCash, Value: core.Money{Cents: 150000},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := budgetCents(t, st, "esra"); got != 150000 {
		t.Fatalf("budget = %d, want 150000 before delete", got)
	}

	if err := svc.DeleteAsset(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	if got := budgetCents(t, st, "esra"); got != 0 {
		t.Errorf("budget = %d, want 0 after deleting the only cash asset", got)
	}
}

func TestListAssets_StrictPartnershipScope(t *testing.T) {
	st := memory.New()
	seedCouple(t, st)
	seedUser(t, st, core.User{Username: "yalnız"})

	// Pre-partnership asset: owned by esra, not stamped. Strict scope
	// excludes it.
	seedAsset(t, st, core.Asset{Username: "esra", Name: "eski", Category: "Döviz", Value: core.Money{Cents: 100}})
	stamped := seedAsset(t, st, core.Asset{Username: "emre", PartnershipID: "p1", Name: "ortak", Category: "Döviz", Value: core.Money{Cents: 200}})
	own := seedAsset(t, st, core.Asset{Username: "yalnız", Name: "kendi", Category: "Döviz", Value: core.Money{Cents: 300}})

	svc := newAssetService(st, nil)

	linked, err := svc.ListAssets(context.Background(), "esra")
	if err != nil {
		t.Fatalf("ListAssets(esra) error = %v", err)
	}
	if len(linked) != 1 || linked[0].ID != stamped.ID {
		t.Errorf("linked user should see only partnership-stamped assets, got %+v", linked)
	}

	solo, err := svc.ListAssets(context.Background(), "yalnız")
	if err != nil {
		t.Fatalf("ListAssets(yalnız) error = %v", err)
	}
	if len(solo) != 1 || solo[0].ID != own.ID {
		t.Errorf("solo user should see only own assets, got %+v", solo)
	}
}

func TestListAssets_PartnershipIDOnlyWidens(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "deniz", PartnershipID: "p2"})

	seedAsset(t, st, core.Asset{Username: "deniz", Name: "kendi", Category: "Döviz", Value: core.Money{Cents: 100}})
	seedAsset(t, st, core.Asset{Username: "başkası", PartnershipID: "p2", Name: "ortak", Category: "Döviz", Value: core.Money{Cents: 200}})
	seedAsset(t, st, core.Asset{Username: "başkası", Name: "alakasız", Category: "Döviz", Value: core.Money{Cents: 300}})

	svc := newAssetService(st, nil)
	got, err := svc.ListAssets(context.Background(), "deniz")
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	// Partner unknown: no strict scope, but the shared id still widens the
	// view to the id-or-owner union.
	if len(got) != 2 {
		t.Errorf("assets = %d, want 2 (own plus partnership-stamped)", len(got))
	}
}
