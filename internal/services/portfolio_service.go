package services

import (
	"context"
	"fmt"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/store"
)

// PortfolioService manages foreign-currency and gold holdings. Their lira
// value is derived from amount times rate at read time and is counted in the
// dashboard total only for users who opted in.
type PortfolioService struct {
	store      store.Store
	dispatcher notify.Dispatcher
}

func NewPortfolioService(st store.Store, dispatcher notify.Dispatcher) *PortfolioService {
	if dispatcher == nil {
		dispatcher = notify.Nop{}
	}
	return &PortfolioService{store: st, dispatcher: dispatcher}
}

func (s *PortfolioService) CreateItem(ctx context.Context, p core.PortfolioItem) (core.PortfolioItem, error) {
	if err := p.Validate(); err != nil {
		return core.PortfolioItem{}, err
	}
	owner, err := s.store.GetUser(ctx, p.Username)
	if err != nil {
		return core.PortfolioItem{}, fmt.Errorf("create portfolio item: %w", err)
	}
	p.PartnershipID = owner.PartnershipID

	created, err := s.store.CreatePortfolioItem(ctx, p)
	if err != nil {
		return core.PortfolioItem{}, err
	}

	notifyPair(ctx, s.dispatcher, owner, "portfolio_created")
	return created, nil
}

func (s *PortfolioService) UpdateItem(ctx context.Context, p core.PortfolioItem) (core.PortfolioItem, error) {
	prev, err := s.store.GetPortfolioItem(ctx, p.ID)
	if err != nil {
		return core.PortfolioItem{}, err
	}
	p.Username = prev.Username
	p.PartnershipID = prev.PartnershipID
	if err := p.Validate(); err != nil {
		return core.PortfolioItem{}, err
	}

	updated, err := s.store.UpdatePortfolioItem(ctx, p)
	if err != nil {
		return core.PortfolioItem{}, err
	}

	owner, err := s.store.GetUser(ctx, updated.Username)
	if err != nil {
		return core.PortfolioItem{}, fmt.Errorf("update portfolio item: %w", err)
	}
	notifyPair(ctx, s.dispatcher, owner, "portfolio_updated")
	return updated, nil
}

func (s *PortfolioService) DeleteItem(ctx context.Context, id int64) error {
	prev, err := s.store.GetPortfolioItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePortfolioItem(ctx, id); err != nil {
		return err
	}

	owner, err := s.store.GetUser(ctx, prev.Username)
	if err != nil {
		return fmt.Errorf("delete portfolio item: %w", err)
	}
	notifyPair(ctx, s.dispatcher, owner, "portfolio_deleted")
	return nil
}

func (s *PortfolioService) GetItem(ctx context.Context, id int64) (core.PortfolioItem, error) {
	return s.store.GetPortfolioItem(ctx, id)
}

// ListItems returns the portfolio visible to a user, widening the same way
// expenses do.
func (s *PortfolioService) ListItems(ctx context.Context, username string) ([]core.PortfolioItem, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	return listPortfolioFor(ctx, s.store, user)
}

func listPortfolioFor(ctx context.Context, st store.Store, user core.User) ([]core.PortfolioItem, error) {
	switch {
	case user.PartnerUsername != "":
		return st.ListPortfolioByOwners(ctx, []string{user.Username, user.PartnerUsername})
	case user.PartnershipID != "":
		return st.ListPortfolioMerged(ctx, user.Username, user.PartnershipID)
	default:
		return st.ListPortfolioByOwner(ctx, user.Username)
	}
}

// TotalEffectiveValue sums the derived lira value of the items.
func TotalEffectiveValue(items []core.PortfolioItem) core.Money {
	var total int64
	for _, item := range items {
		total += item.EffectiveValue().Cents
	}
	return core.Money{Cents: total}
}
