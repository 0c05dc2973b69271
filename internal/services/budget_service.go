// Package services holds the business logic between the HTTP layer and the
// store: the budget synchronizer, the ownership-scoped aggregations, and the
// installment schedule.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/store"
)

// BudgetService keeps the shared budget equal to the sum of cash assets.
type BudgetService struct {
	store      store.Store
	dispatcher notify.Dispatcher
}

func NewBudgetService(st store.Store, dispatcher notify.Dispatcher) *BudgetService {
	if dispatcher == nil {
		dispatcher = notify.Nop{}
	}
	return &BudgetService{store: st, dispatcher: dispatcher}
}

// Synchronize recomputes the budget from cash assets and writes it to both
// partners. With a linked partner the sum covers assets owned by the username
// or stamped with the shared partnership id; otherwise only the owner's own
// cash counts. The two writes are deliberately not transactional: a failed
// second write leaves the budgets briefly unequal and the next mutation
// repairs them.
func (s *BudgetService) Synchronize(ctx context.Context, username string) (core.Money, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return core.Money{}, fmt.Errorf("synchronize budget: %w", err)
	}

	var total int64
	if user.HasPartner() {
		total, err = s.store.SumCashShared(ctx, user.Username, user.PartnershipID)
	} else {
		total, err = s.store.SumCashByOwner(ctx, user.Username)
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("synchronize budget: %w", err)
	}

	if err := s.store.UpsertBudget(ctx, user.Username, total, user.Username); err != nil {
		return core.Money{}, fmt.Errorf("synchronize budget: %w", err)
	}
	if user.HasPartner() {
		if err := s.store.UpsertBudget(ctx, user.PartnerUsername, total, user.Username); err != nil {
			return core.Money{}, fmt.Errorf("synchronize partner budget: %w", err)
		}
	}

	slog.InfoContext(ctx, "Budget synchronized",
		"username", user.Username,
		"partner", user.PartnerUsername,
		"total_cents", total)

	return core.Money{Cents: total}, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, username string) (core.Budget, error) {
	return s.store.GetBudget(ctx, username)
}

// SetBudget overwrites the budget directly. Without a partner the amount
// sticks until the next cash-asset mutation; for a linked pair the write is
// followed by a resynchronization, so the stored and returned budget is the
// recomputed shared cash total, not the raw amount.
func (s *BudgetService) SetBudget(ctx context.Context, username string, amount core.Money, addedBy string) (core.Budget, error) {
	if amount.Cents < 0 {
		return core.Budget{}, core.ErrInvalidAmount
	}
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}

	if err := s.store.UpsertBudget(ctx, user.Username, amount.Cents, addedBy); err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	if user.HasPartner() {
		if err := s.store.UpsertBudget(ctx, user.PartnerUsername, amount.Cents, addedBy); err != nil {
			return core.Budget{}, fmt.Errorf("set partner budget: %w", err)
		}
		if _, err := s.Synchronize(ctx, user.Username); err != nil {
			return core.Budget{}, fmt.Errorf("set budget: %w", err)
		}
	}

	notifyPair(ctx, s.dispatcher, user, "budget_set")
	return s.store.GetBudget(ctx, user.Username)
}

// notifyPair signals the user and, when linked, the partner. Delivery
// failures are logged and swallowed so a broken broker never fails a
// mutation.
func notifyPair(ctx context.Context, dispatcher notify.Dispatcher, user core.User, reason string) {
	if dispatcher == nil {
		return
	}
	targets := []string{user.Username}
	if user.PartnerUsername != "" {
		targets = append(targets, user.PartnerUsername)
	}
	for _, target := range targets {
		if err := dispatcher.Notify(ctx, target, reason); err != nil {
			slog.WarnContext(ctx, "Failed to publish refresh",
				"username", target,
				"reason", reason,
				"error", err)
		}
	}
}
