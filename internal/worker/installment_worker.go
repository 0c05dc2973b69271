package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/services"
	"butce/internal/store"
)

// InstallmentWorker advances monthly installment schedules. Each pass it
// collects the due states, moves their next-due date forward month by month,
// and notifies the owning user.
type InstallmentWorker struct {
	store      store.Store
	dispatcher notify.Dispatcher
	batchSize  int
}

func NewInstallmentWorker(st store.Store, dispatcher notify.Dispatcher, batchSize int) *InstallmentWorker {
	if dispatcher == nil {
		dispatcher = notify.Nop{}
	}
	if batchSize < 1 {
		batchSize = 50
	}
	return &InstallmentWorker{store: st, dispatcher: dispatcher, batchSize: batchSize}
}

// Run processes due installments on a fixed interval until the context is
// cancelled. One pass runs immediately on start.
func (w *InstallmentWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.ProcessDue(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Installment pass failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessDue(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Installment pass failed", "error", err)
			}
		}
	}
}

// ProcessDue advances every schedule whose next due date has passed. A state
// that fell several months behind is advanced one month per remaining
// installment until it is ahead of now or exhausted.
func (w *InstallmentWorker) ProcessDue(ctx context.Context, now time.Time) error {
	due, err := w.store.ListDueInstallments(ctx, now, w.batchSize)
	if err != nil {
		return fmt.Errorf("list due installments: %w", err)
	}

	for _, state := range due {
		if err := w.advance(ctx, state, now); err != nil {
			slog.WarnContext(ctx, "Failed to advance installment",
				"expense_id", state.ExpenseID,
				"error", err)
		}
	}

	if len(due) > 0 {
		slog.InfoContext(ctx, "Installment pass completed", "processed", len(due))
	}
	return nil
}

func (w *InstallmentWorker) advance(ctx context.Context, state core.InstallmentState, now time.Time) error {
	expense, err := w.store.GetExpense(ctx, state.ExpenseID)
	if err != nil {
		// The expense is gone; drop the orphaned schedule.
		if errors.Is(err, core.ErrNotFound) {
			return w.store.DeleteInstallmentState(ctx, state.ExpenseID)
		}
		return err
	}

	paid := 0
	for state.Remaining > 0 && !state.NextDue.After(now) {
		state.Remaining--
		state.NextDue = services.NextMonthlyDue(state.NextDue)
		paid++
	}

	if state.Remaining == 0 {
		if err := w.store.DeleteInstallmentState(ctx, state.ExpenseID); err != nil {
			return err
		}
	} else {
		if err := w.store.UpsertInstallmentState(ctx, state); err != nil {
			return err
		}
	}

	message := fmt.Sprintf("%s için taksit ödemesi geldi (%d taksit kaldı)", expense.Description, state.Remaining)
	if _, err := w.store.CreateNotification(ctx, expense.Username, message); err != nil {
		return fmt.Errorf("write installment notification: %w", err)
	}
	if err := w.dispatcher.Notify(ctx, expense.Username, "installment_due"); err != nil {
		slog.WarnContext(ctx, "Failed to publish installment refresh",
			"username", expense.Username,
			"error", err)
	}

	slog.InfoContext(ctx, "Installment advanced",
		"expense_id", expense.ID,
		"username", expense.Username,
		"paid", paid,
		"remaining", state.Remaining)
	return nil
}
