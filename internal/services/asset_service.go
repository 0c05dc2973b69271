package services

import (
	"context"
	"fmt"

	"butce/internal/core"
	"butce/internal/notify"
	"butce/internal/store"
)

// AssetService manages asset records and triggers budget synchronization
// whenever a mutation touches the cash category.
type AssetService struct {
	store      store.Store
	budgets    *BudgetService
	dispatcher notify.Dispatcher
}

func NewAssetService(st store.Store, budgets *BudgetService, dispatcher notify.Dispatcher) *AssetService {
	if dispatcher == nil {
		dispatcher = notify.Nop{}
	}
	return &AssetService{store: st, budgets: budgets, dispatcher: dispatcher}
}

func (s *AssetService) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	owner, err := s.store.GetUser(ctx, a.Username)
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	a.PartnershipID = owner.PartnershipID

	created, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		return core.Asset{}, err
	}

	if created.IsCash() {
		if _, err := s.budgets.Synchronize(ctx, owner.Username); err != nil {
			return core.Asset{}, err
		}
	}

	notifyPair(ctx, s.dispatcher, owner, "asset_created")
	return created, nil
}

func (s *AssetService) UpdateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	prev, err := s.store.GetAsset(ctx, a.ID)
	if err != nil {
		return core.Asset{}, err
	}
	a.Username = prev.Username
	a.PartnershipID = prev.PartnershipID
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}

	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		return core.Asset{}, err
	}

	// Resync when the mutation moved value into or out of the cash
	// category, or changed a cash value.
	if prev.IsCash() || updated.IsCash() {
		if _, err := s.budgets.Synchronize(ctx, updated.Username); err != nil {
			return core.Asset{}, err
		}
	}

	owner, err := s.store.GetUser(ctx, updated.Username)
	if err != nil {
		return core.Asset{}, fmt.Errorf("update asset: %w", err)
	}
	notifyPair(ctx, s.dispatcher, owner, "asset_updated")
	return updated, nil
}

func (s *AssetService) DeleteAsset(ctx context.Context, id int64) error {
	prev, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAsset(ctx, id); err != nil {
		return err
	}

	// Deleting the last cash asset must drive the budget to zero, so the
	// synchronizer runs even when the remaining sum is empty.
	if prev.IsCash() {
		if _, err := s.budgets.Synchronize(ctx, prev.Username); err != nil {
			return err
		}
	}

	owner, err := s.store.GetUser(ctx, prev.Username)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	notifyPair(ctx, s.dispatcher, owner, "asset_deleted")
	return nil
}

func (s *AssetService) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	return s.store.GetAsset(ctx, id)
}

// ListAssets returns the assets visible to a user. With a fully linked
// partner the view is strictly the partnership's assets; with only a
// partnership id it widens to the id-or-owner union; otherwise it is the
// user's own.
func (s *AssetService) ListAssets(ctx context.Context, username string) ([]core.Asset, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return listAssetsFor(ctx, s.store, user)
}

func listAssetsFor(ctx context.Context, st store.Store, user core.User) ([]core.Asset, error) {
	switch {
	case user.HasPartner():
		return st.ListAssetsByPartnership(ctx, user.PartnershipID)
	case user.PartnershipID != "":
		return st.ListAssetsMerged(ctx, user.Username, user.PartnershipID)
	default:
		return st.ListAssetsByOwner(ctx, user.Username)
	}
}
