package worker

import (
	"context"
	"testing"
	"time"

	"butce/internal/core"
	"butce/internal/store/memory"
)

func seedInstallmentExpense(t *testing.T, st *memory.Store, installments int, date time.Time) core.Expense {
	t.Helper()
	ctx := context.Background()
	if err := st.CreateUser(ctx, core.User{Username: "esra"}); err != nil {
		t.Fatal(err)
	}
	expense, err := st.CreateExpense(ctx, core.Expense{
		Username:     "esra",
		Description:  "gelinlik",
		Amount:       core.Money{Cents: 1200000},
		Date:         date,
		Installments: installments,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertInstallmentState(ctx, core.InstallmentState{
		ExpenseID: expense.ID,
		NextDue:   date.AddDate(0, 1, 0),
		Remaining: installments - 1,
	}); err != nil {
		t.Fatal(err)
	}
	return expense
}

func TestProcessDue_AdvancesOneMonth(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	expense := seedInstallmentExpense(t, st, 6, start)

	w := NewInstallmentWorker(st, nil, 50)
	now := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	if err := w.ProcessDue(ctx, now); err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}

	states, err := st.ListDueInstallments(ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 1 {
		t.Fatalf("states = %d, want 1", len(states))
	}
	if states[0].Remaining != 4 {
		t.Errorf("remaining = %d, want 4", states[0].Remaining)
	}
	want := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	if !states[0].NextDue.Equal(want) {
		t.Errorf("next due = %v, want %v", states[0].NextDue, want)
	}

	notifications, err := st.ListNotifications(ctx, expense.Username)
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifications))
	}
}

func TestProcessDue_CatchesUpMissedMonths(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	seedInstallmentExpense(t, st, 6, start)

	w := NewInstallmentWorker(st, nil, 50)
	// Three due dates (Feb, Mar, Apr 10) have passed.
	now := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	if err := w.ProcessDue(ctx, now); err != nil {
		t.Fatal(err)
	}

	states, err := st.ListDueInstallments(ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 1 {
		t.Fatalf("states = %d, want 1", len(states))
	}
	if states[0].Remaining != 2 {
		t.Errorf("remaining = %d, want 2 after catching up three months", states[0].Remaining)
	}
	want := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	if !states[0].NextDue.Equal(want) {
		t.Errorf("next due = %v, want %v", states[0].NextDue, want)
	}
}

func TestProcessDue_FinalInstallmentRemovesState(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedInstallmentExpense(t, st, 2, start)

	w := NewInstallmentWorker(st, nil, 50)
	if err := w.ProcessDue(ctx, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	states, err := st.ListDueInstallments(ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 0 {
		t.Errorf("states = %d, want 0 after the final installment", len(states))
	}
}

func TestProcessDue_OrphanedStateIsDropped(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	if err := st.UpsertInstallmentState(ctx, core.InstallmentState{
		ExpenseID: 999,
		NextDue:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Remaining: 3,
	}); err != nil {
		t.Fatal(err)
	}

	w := NewInstallmentWorker(st, nil, 50)
	if err := w.ProcessDue(ctx, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	states, err := st.ListDueInstallments(ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 0 {
		t.Errorf("orphaned state should be dropped, got %d", len(states))
	}
}

func TestProcessDue_NothingDue(t *testing.T) {
	st := memory.New()
	w := NewInstallmentWorker(st, nil, 50)
	if err := w.ProcessDue(context.Background(), time.Now()); err != nil {
		t.Errorf("ProcessDue() on empty store error = %v", err)
	}
}
