package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/store"
)

// UserService manages accounts and partner links.
type UserService struct {
	store      store.Store
	dispatcher notify.Dispatcher
}

func NewUserService(st store.Store, dispatcher notify.Dispatcher) *UserService {
	if dispatcher == nil {
		dispatcher = notify.Nop{}
	}
	return &UserService{store: st, dispatcher: dispatcher}
}

func (s *UserService) Register(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, username string) (core.User, error) {
	return s.store.GetUser(ctx, username)
}

// LinkPartner connects two users under a shared partnership id, reusing an
// id either side already carries so previously stamped records stay in
// scope. Both user rows are updated and the budget is resynchronized over
// the merged cash assets.
func (s *UserService) LinkPartner(ctx context.Context, username, partner string, budgets *BudgetService) (core.User, error) {
	if username == partner {
		return core.User{}, core.ErrSelfPartner
	}

	self, err := s.store.GetUser(ctx, username)
	if err != nil {
		return core.User{}, fmt.Errorf("link partner: %w", err)
	}
	other, err := s.store.GetUser(ctx, partner)
	if err != nil {
		return core.User{}, fmt.Errorf("link partner: %w", err)
	}

	partnershipID := self.PartnershipID
	if partnershipID == "" {
		partnershipID = other.PartnershipID
	}
	if partnershipID == "" {
		partnershipID, err = newPartnershipID()
		if err != nil {
			return core.User{}, fmt.Errorf("link partner: %w", err)
		}
	}

	if err := s.store.LinkPartners(ctx, username, partner, partnershipID); err != nil {
		return core.User{}, err
	}

	if budgets != nil {
		if _, err := budgets.Synchronize(ctx, username); err != nil {
			slog.WarnContext(ctx, "Budget resync after partner link failed",
				"username", username,
				"error", err)
		}
	}

	linked, err := s.store.GetUser(ctx, username)
	if err != nil {
		return core.User{}, fmt.Errorf("link partner: %w", err)
	}
	notifyPair(ctx, s.dispatcher, linked, "partner_linked")
	return linked, nil
}

// SetPortfolioInBudget flips the per-user toggle controlling whether the
// derived portfolio value is shown alongside the dashboard budget.
func (s *UserService) SetPortfolioInBudget(ctx context.Context, username string, included bool) (core.User, error) {
	if err := s.store.SetPortfolioInBudget(ctx, username, included); err != nil {
		return core.User{}, err
	}
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return core.User{}, err
	}
	notifyPair(ctx, s.dispatcher, user, "portfolio_toggle")
	return user, nil
}

func newPartnershipID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate partnership id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
