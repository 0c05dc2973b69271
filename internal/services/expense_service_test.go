package services

import (
	"context"
	"testing"
	"time"

	"butce/internal/core"
	"butce/internal/store/memory"
)

func TestCreateExpense_StampsPartnershipAndSkipsBudget(t *testing.T) {
	st := memory.New()
	seedCouple(t, st)
	if err := st.UpsertBudget(context.Background(), "esra", 600000, "esra"); err != nil {
		t.Fatal(err)
	}

	svc := NewExpenseService(st, nil)
	created, err := svc.CreateExpense(context.Background(), core.Expense{
		Username:    "esra",
		Description: "davetiye baskısı",
		Category:    "Davetiye",
		Amount:      core.Money{Cents: 45000},
		Date:        time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if created.PartnershipID != "p1" {
		t.Errorf("partnership id not stamped: %q", created.PartnershipID)
	}
	if got := budgetCents(t, st, "esra"); got != 600000 {
		t.Errorf("budget = %d, want unchanged 600000 (expenses never touch the budget)", got)
	}
}

func TestCreateExpense_InstallmentsScheduleTail(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})

	svc := NewExpenseService(st, nil)
	created, err := svc.CreateExpense(context.Background(), core.Expense{
		Username:     "esra",
		Description:  "gelinlik",
		Amount:       core.Money{Cents: 1200000},
		Date:         time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Installments: 6,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	due, err := st.ListDueInstallments(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatalf("ListDueInstallments() error = %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due installments = %d, want 1", len(due))
	}
	state := due[0]
	if state.ExpenseID != created.ID {
		t.Errorf("state expense id = %d, want %d", state.ExpenseID, created.ID)
	}
	if state.Remaining != 5 {
		t.Errorf("remaining = %d, want 5 (first installment paid at purchase)", state.Remaining)
	}
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !state.NextDue.Equal(want) {
		t.Errorf("next due = %v, want %v (clamped to end of February)", state.NextDue, want)
	}
}

func TestCreateExpense_SingleInstallmentHasNoSchedule(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})

	svc := NewExpenseService(st, nil)
	if _, err := svc.CreateExpense(context.Background(), core.Expense{
		Username:    "esra",
		Description: "nikah şekeri",
		Amount:      core.Money{Cents: 30000},
		Date:        time.Now(),
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	due, err := st.ListDueInstallments(context.Background(), time.Now().AddDate(1, 0, 0), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("single-payment expense should not be scheduled, got %d states", len(due))
	}
}

func TestUpdateExpense_InstallmentChangeReschedules(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})
	svc := NewExpenseService(st, nil)

	created, err := svc.CreateExpense(context.Background(), core.Expense{
		Username:     "esra",
		Description:  "damatlık",
		Amount:       core.Money{Cents: 500000},
		Date:         time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Installments: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	created.Installments = 1
	if _, err := svc.UpdateExpense(context.Background(), created); err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}

	due, err := st.ListDueInstallments(context.Background(), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("dropping to a single payment should clear the schedule, got %d states", len(due))
	}
}

func TestDeleteExpense_ClearsSchedule(t *testing.T) {
	st := memory.New()
	seedUser(t, st, core.User{Username: "esra"})
	svc := NewExpenseService(st, nil)

	created, err := svc.CreateExpense(context.Background(), core.Expense{
		Username:     "esra",
		Description:  "salon kaporası",
		Amount:       core.Money{Cents: 2000000},
		Date:         time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Installments: 10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteExpense(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	due, err := st.ListDueInstallments(context.Background(), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("deleting the expense should clear the schedule, got %d states", len(due))
	}
}

func TestListExpenses_ScopeFallback(t *testing.T) {
	st := memory.New()
	// Fully linked pair.
	seedCouple(t, st)
	// Partnership id known but partner username missing (half-migrated row).
	seedUser(t, st, core.User{Username: "deniz", PartnershipID: "p2"})
	// No partnership at all.
	seedUser(t, st, core.User{Username: "yalnız"})

	ctx := context.Background()
	mustExpense := func(e core.Expense) core.Expense {
		t.Helper()
		created, err := st.CreateExpense(ctx, e)
		if err != nil {
			t.Fatal(err)
		}
		return created
	}

	mustExpense(core.Expense{Username: "esra", Description: "a", Amount: core.Money{Cents: 100}})
	mustExpense(core.Expense{Username: "emre", Description: "b", Amount: core.Money{Cents: 100}})
	mustExpense(core.Expense{Username: "deniz", Description: "c", Amount: core.Money{Cents: 100}})
	mustExpense(core.Expense{Username: "başkası", PartnershipID: "p2", Description: "d", Amount: core.Money{Cents: 100}})
	mustExpense(core.Expense{Username: "yalnız", Description: "e", Amount: core.Money{Cents: 100}})

	svc := NewExpenseService(st, nil)

	tests := []struct {
		username string
		want     int
	}{
		{"esra", 2},   // both partners' expenses by username
		{"deniz", 2},  // own plus partnership-stamped
		{"yalnız", 1}, // own only
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			got, err := svc.ListExpenses(ctx, tt.username)
			if err != nil {
				t.Fatalf("ListExpenses(%s) error = %v", tt.username, err)
			}
			if len(got) != tt.want {
				t.Errorf("ListExpenses(%s) returned %d expenses, want %d", tt.username, len(got), tt.want)
			}
		})
	}
}
