package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"butce/internal/cache"
	"butce/internal/core"
	"butce/internal/store"
)

const (
	dashboardCacheSize = 256
	dashboardCacheTTL  = 30 * time.Second
)

// DashboardService assembles the merged household view a client renders
// after a refresh signal. Built dashboards are cached per username for a
// short TTL; mutation paths invalidate through Invalidate.
type DashboardService struct {
	store store.Store
	cache *cache.LRU[core.Dashboard]
}

func NewDashboardService(st store.Store) *DashboardService {
	return &DashboardService{
		store: st,
		cache: cache.NewLRU[core.Dashboard](dashboardCacheSize, dashboardCacheTTL),
	}
}

// Invalidate drops the cached dashboard of the user and, when a partner is
// known, the partner's as well. Called after any mutation that changes what
// either side of the household sees.
func (s *DashboardService) Invalidate(ctx context.Context, username string) {
	s.cache.Delete(username)
	if user, err := s.store.GetUser(ctx, username); err == nil && user.PartnerUsername != "" {
		s.cache.Delete(user.PartnerUsername)
	}
}

// Notify implements notify.Dispatcher so the service can sit behind a
// notify.Fanout next to the AMQP client: every refresh signal drops the
// signalled user's cached dashboard. Partners receive their own signal.
func (s *DashboardService) Notify(_ context.Context, username, _ string) error {
	s.cache.Delete(username)
	return nil
}

// EvictExpired lets a cache.Sweeper reclaim expired dashboards.
func (s *DashboardService) EvictExpired() int {
	return s.cache.EvictExpired()
}

// Build loads every dashboard section concurrently. Expenses and portfolio
// widen by whatever is known about the partnership; assets switch to the
// strict partnership scope only when both the partner and the shared id are
// known.
func (s *DashboardService) Build(ctx context.Context, username string) (core.Dashboard, error) {
	if dash, ok := s.cache.Get(username); ok {
		return dash, nil
	}

	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	var dash core.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		switch {
		case user.PartnerUsername != "":
			dash.Expenses, err = s.store.ListExpensesByOwners(gctx, []string{user.Username, user.PartnerUsername})
		case user.PartnershipID != "":
			dash.Expenses, err = s.store.ListExpensesMerged(gctx, user.Username, user.PartnershipID)
		default:
			dash.Expenses, err = s.store.ListExpensesByOwner(gctx, user.Username)
		}
		return err
	})

	g.Go(func() error {
		var err error
		dash.Assets, err = listAssetsFor(gctx, s.store, user)
		return err
	})

	g.Go(func() error {
		var err error
		dash.Portfolio, err = listPortfolioFor(gctx, s.store, user)
		return err
	})

	g.Go(func() error {
		var err error
		dash.Budget, err = s.store.GetBudget(gctx, user.Username)
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	if user.PortfolioInBudget {
		dash.PortfolioValue = TotalEffectiveValue(dash.Portfolio)
	}

	dash.Names = map[string]string{user.Username: user.FullName}
	if user.PartnerUsername != "" {
		// A missing partner row just leaves the name out.
		if partner, err := s.store.GetUser(ctx, user.PartnerUsername); err == nil {
			dash.Names[partner.Username] = partner.FullName
		}
	}

	s.cache.Set(username, dash)
	return dash, nil
}
