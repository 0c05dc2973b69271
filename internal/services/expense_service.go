package services

import (
	"context"
	"fmt"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/store"
)

// ExpenseService manages spending records. Expenses never touch the budget;
// they only feed the dashboard and the installment schedule.
type ExpenseService struct {
	store      store.Store
	dispatcher notify.Dispatcher
}

func NewExpenseService(st store.Store, dispatcher notify.Dispatcher) *ExpenseService {
	if dispatcher == nil {
		dispatcher = notify.Nop{}
	}
	return &ExpenseService{store: st, dispatcher: dispatcher}
}

func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	owner, err := s.store.GetUser(ctx, e.Username)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.PartnershipID = owner.PartnershipID

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}

	if created.Installments > 1 {
		state := core.InstallmentState{
			ExpenseID: created.ID,
			NextDue:   FirstInstallmentDue(created.Date),
			Remaining: created.Installments - 1,
		}
		if err := s.store.UpsertInstallmentState(ctx, state); err != nil {
			return core.Expense{}, fmt.Errorf("schedule installments: %w", err)
		}
	}

	notifyPair(ctx, s.dispatcher, owner, "expense_created")
	return created, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	prev, err := s.store.GetExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, err
	}
	e.Username = prev.Username
	e.PartnershipID = prev.PartnershipID
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}

	// A changed installment count restarts the schedule from the expense
	// date; dropping below two removes it.
	if updated.Installments != prev.Installments {
		if updated.Installments > 1 {
			state := core.InstallmentState{
				ExpenseID: updated.ID,
				NextDue:   FirstInstallmentDue(updated.Date),
				Remaining: updated.Installments - 1,
			}
			if err := s.store.UpsertInstallmentState(ctx, state); err != nil {
				return core.Expense{}, fmt.Errorf("reschedule installments: %w", err)
			}
		} else {
			if err := s.store.DeleteInstallmentState(ctx, updated.ID); err != nil {
				return core.Expense{}, fmt.Errorf("clear installments: %w", err)
			}
		}
	}

	owner, err := s.store.GetUser(ctx, updated.Username)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	notifyPair(ctx, s.dispatcher, owner, "expense_updated")
	return updated, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	prev, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteInstallmentState(ctx, id); err != nil {
		return fmt.Errorf("clear installments: %w", err)
	}

	owner, err := s.store.GetUser(ctx, prev.Username)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	notifyPair(ctx, s.dispatcher, owner, "expense_deleted")
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListExpenses returns the expenses visible to a user, widening with what is
// known about the partnership: both usernames when the partner is known, the
// partnership id union when only the id is known, otherwise the user's own.
func (s *ExpenseService) ListExpenses(ctx context.Context, username string) ([]core.Expense, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	switch {
	case user.PartnerUsername != "":
		return s.store.ListExpensesByOwners(ctx, []string{user.Username, user.PartnerUsername})
	case user.PartnershipID != "":
		return s.store.ListExpensesMerged(ctx, user.Username, user.PartnershipID)
	default:
		return s.store.ListExpensesByOwner(ctx, user.Username)
	}
}
