// Package worker holds the background processes: the notify worker that
// turns refresh signals into notification rows, and the installment worker
// that advances monthly payment schedules.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"butce/internal/amqp"
	"butce/internal/services"
	"butce/internal/store"
)

var refreshMessages = map[string]string{
	"asset_created":     "Yeni varlık eklendi",
	"asset_updated":     "Varlık güncellendi",
	"asset_deleted":     "Varlık silindi",
	"expense_created":   "Yeni harcama eklendi",
	"expense_updated":   "Harcama güncellendi",
	"expense_deleted":   "Harcama silindi",
	"portfolio_created": "Portföye yeni kalem eklendi",
	"portfolio_updated": "Portföy güncellendi",
	"portfolio_deleted": "Portföyden kalem silindi",
	"budget_set":        "Bütçe güncellendi",
	"partner_linked":    "Partner bağlantısı kuruldu",
	"installment_due":   "Taksit ödemesi geldi",
}

// NotifyWorker consumes refresh messages and writes notification rows. It
// also keeps the set of recently touched usernames and periodically re-runs
// the budget synchronizer for them, repairing any drift the best-effort
// partner write left behind.
type NotifyWorker struct {
	store   store.Store
	budgets *services.BudgetService

	mu      sync.Mutex
	touched map[string]struct{}
}

func NewNotifyWorker(st store.Store, budgets *services.BudgetService) *NotifyWorker {
	return &NotifyWorker{
		store:   st,
		budgets: budgets,
		touched: make(map[string]struct{}),
	}
}

// HandleRefresh is the AMQP message handler.
func (w *NotifyWorker) HandleRefresh(msg *amqp.RefreshMessage) error {
	ctx := context.Background()

	message, ok := refreshMessages[msg.Reason]
	if !ok {
		message = "Hesap hareketleri değişti"
	}

	if _, err := w.store.CreateNotification(ctx, msg.Username, message); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	w.mu.Lock()
	w.touched[msg.Username] = struct{}{}
	w.mu.Unlock()

	slog.InfoContext(ctx, "Refresh handled",
		"username", msg.Username,
		"reason", msg.Reason)
	return nil
}

// RunSweep periodically resynchronizes the budget of every username touched
// since the last sweep.
func (w *NotifyWorker) RunSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one resync pass over the touched set.
func (w *NotifyWorker) Sweep(ctx context.Context) {
	w.mu.Lock()
	usernames := make([]string, 0, len(w.touched))
	for username := range w.touched {
		usernames = append(usernames, username)
	}
	w.touched = make(map[string]struct{})
	w.mu.Unlock()

	for _, username := range usernames {
		if _, err := w.budgets.Synchronize(ctx, username); err != nil {
			slog.WarnContext(ctx, "Sweep resync failed",
				"username", username,
				"error", err)
		}
	}

	if len(usernames) > 0 {
		slog.InfoContext(ctx, "Sweep completed", "resynced", len(usernames))
	}
}
