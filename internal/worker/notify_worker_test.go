package worker

import (
	"context"
	"testing"

	"butce/internal/amqp"
	"butce/internal/core"
	"butce/internal/services"
	"butce/internal/store/memory"
)

func TestHandleRefresh_WritesNotification(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	if err := st.CreateUser(ctx, core.User{Username: "esra"}); err != nil {
		t.Fatal(err)
	}

	w := NewNotifyWorker(st, services.NewBudgetService(st, nil))
	if err := w.HandleRefresh(amqp.NewRefreshMessage("esra", "asset_created")); err != nil {
		t.Fatalf("HandleRefresh() error = %v", err)
	}

	notifications, err := st.ListNotifications(ctx, "esra")
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	if notifications[0].Message != "Yeni varlık eklendi" {
		t.Errorf("message = %q", notifications[0].Message)
	}
}

func TestHandleRefresh_UnknownReasonGetsGenericMessage(t *testing.T) {
	st := memory.New()
	w := NewNotifyWorker(st, services.NewBudgetService(st, nil))

	if err := w.HandleRefresh(amqp.NewRefreshMessage("esra", "something_else")); err != nil {
		t.Fatalf("HandleRefresh() error = %v", err)
	}

	notifications, _ := st.ListNotifications(context.Background(), "esra")
	if len(notifications) != 1 || notifications[0].Message != "Hesap hareketleri değişti" {
		t.Errorf("unexpected notifications: %+v", notifications)
	}
}

func TestSweep_RepairsPartnerBudget(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	if err := st.CreateUser(ctx, core.User{Username: "esra", PartnerUsername: "emre", PartnershipID: "p1"}); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateUser(ctx, core.User{Username: "emre", PartnerUsername: "esra", PartnershipID: "p1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateAsset(ctx, core.Asset{
		Username: "esra", PartnershipID: "p1", Name: "nakit",
		Category: core.CategoryCash, Value: core.Money{Cents: 500000},
	}); err != nil {
		t.Fatal(err)
	}
	// Simulate drift: esra's budget is current, emre's write was lost.
	if err := st.UpsertBudget(ctx, "esra", 500000, "esra"); err != nil {
		t.Fatal(err)
	}

	w := NewNotifyWorker(st, services.NewBudgetService(st, nil))
	if err := w.HandleRefresh(amqp.NewRefreshMessage("esra", "asset_created")); err != nil {
		t.Fatal(err)
	}
	w.Sweep(ctx)

	budget, err := st.GetBudget(ctx, "emre")
	if err != nil {
		t.Fatal(err)
	}
	if budget.Amount.Cents != 500000 {
		t.Errorf("partner budget after sweep = %d, want 500000", budget.Amount.Cents)
	}

	// The touched set is cleared; a second sweep is a no-op.
	w.Sweep(ctx)
}
