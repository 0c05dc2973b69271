// Package memory is an in-memory Store used by tests and the memory backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"butce/internal/core"
)

type Store struct {
	mu sync.RWMutex

	users         map[string]core.User
	assets        map[int64]core.Asset
	budgets       map[string]core.Budget
	expenses      map[int64]core.Expense
	portfolio     map[int64]core.PortfolioItem
	categories    []core.Category
	vendors       []core.Vendor
	notifications map[int64]core.Notification
	installments  map[int64]core.InstallmentState

	nextID int64
}

func New() *Store {
	return &Store{
		users:         make(map[string]core.User),
		assets:        make(map[int64]core.Asset),
		budgets:       make(map[string]core.Budget),
		expenses:      make(map[int64]core.Expense),
		portfolio:     make(map[int64]core.PortfolioItem),
		notifications: make(map[int64]core.Notification),
		installments:  make(map[int64]core.InstallmentState),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// SeedCategories replaces the category list. Tests use it in place of the
// SQL seed migration.
func (s *Store) SeedCategories(categories []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

// SeedVendors replaces the vendor list.
func (s *Store) SeedVendors(vendors []core.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors = vendors
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return fmt.Errorf("user %s already exists", u.Username)
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return core.User{}, fmt.Errorf("get user %s: %w", username, core.ErrNotFound)
	}
	return u, nil
}

func (s *Store) LinkPartners(_ context.Context, username, partner, partnershipID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[username]
	if !ok {
		return fmt.Errorf("link partner %s: %w", username, core.ErrNotFound)
	}
	b, ok := s.users[partner]
	if !ok {
		return fmt.Errorf("link partner %s: %w", partner, core.ErrNotFound)
	}
	a.PartnerUsername, a.PartnershipID = partner, partnershipID
	b.PartnerUsername, b.PartnershipID = username, partnershipID
	s.users[username], s.users[partner] = a, b
	return nil
}

func (s *Store) SetPortfolioInBudget(_ context.Context, username string, included bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return fmt.Errorf("set portfolio inclusion: %w", core.ErrNotFound)
	}
	u.PortfolioInBudget = included
	s.users[username] = u
	return nil
}

// --- assets ---

func (s *Store) CreateAsset(_ context.Context, a core.Asset) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAsset(_ context.Context, a core.Asset) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.assets[a.ID]
	if !ok {
		return core.Asset{}, fmt.Errorf("update asset %d: %w", a.ID, core.ErrNotFound)
	}
	a.Username, a.PartnershipID = prev.Username, prev.PartnershipID
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) DeleteAsset(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[id]; !ok {
		return fmt.Errorf("delete asset %d: %w", id, core.ErrNotFound)
	}
	delete(s.assets, id)
	return nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (core.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return core.Asset{}, fmt.Errorf("get asset %d: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) listAssets(keep func(core.Asset) bool) []core.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Asset
	for _, a := range s.assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListAssetsByOwner(_ context.Context, username string) ([]core.Asset, error) {
	return s.listAssets(func(a core.Asset) bool { return a.Username == username }), nil
}

func (s *Store) ListAssetsByPartnership(_ context.Context, partnershipID string) ([]core.Asset, error) {
	return s.listAssets(func(a core.Asset) bool { return a.PartnershipID == partnershipID }), nil
}

func (s *Store) ListAssetsMerged(_ context.Context, username, partnershipID string) ([]core.Asset, error) {
	return s.listAssets(func(a core.Asset) bool {
		return a.PartnershipID == partnershipID || a.Username == username
	}), nil
}

func (s *Store) SumCashByOwner(_ context.Context, username string) (int64, error) {
	var total int64
	for _, a := range s.listAssets(func(a core.Asset) bool {
		return a.Username == username && a.IsCash()
	}) {
		total += a.Value.Cents
	}
	return total, nil
}

func (s *Store) SumCashShared(_ context.Context, username, partnershipID string) (int64, error) {
	var total int64
	for _, a := range s.listAssets(func(a core.Asset) bool {
		return a.IsCash() && (a.Username == username || a.PartnershipID == partnershipID)
	}) {
		total += a.Value.Cents
	}
	return total, nil
}

// --- budgets ---

func (s *Store) GetBudget(_ context.Context, username string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[username]
	if !ok {
		return core.Budget{Username: username}, nil
	}
	return b, nil
}

func (s *Store) UpsertBudget(_ context.Context, username string, amountCents int64, addedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[username] = core.Budget{
		Username:  username,
		Amount:    core.Money{Cents: amountCents},
		AddedBy:   addedBy,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// --- expenses ---

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.expenses[e.ID]
	if !ok {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, core.ErrNotFound)
	}
	e.Username, e.PartnershipID = prev.Username, prev.PartnershipID
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("delete expense %d: %w", id, core.ErrNotFound)
	}
	delete(s.expenses, id)
	delete(s.installments, id)
	return nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *Store) listExpenses(keep func(core.Expense) bool) []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) ListExpensesByOwner(_ context.Context, username string) ([]core.Expense, error) {
	return s.listExpenses(func(e core.Expense) bool { return e.Username == username }), nil
}

func (s *Store) ListExpensesByOwners(_ context.Context, usernames []string) ([]core.Expense, error) {
	set := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		set[u] = true
	}
	return s.listExpenses(func(e core.Expense) bool { return set[e.Username] }), nil
}

func (s *Store) ListExpensesMerged(_ context.Context, username, partnershipID string) ([]core.Expense, error) {
	return s.listExpenses(func(e core.Expense) bool {
		return e.PartnershipID == partnershipID || e.Username == username
	}), nil
}

// --- portfolio ---

func (s *Store) CreatePortfolioItem(_ context.Context, p core.PortfolioItem) (core.PortfolioItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.portfolio[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePortfolioItem(_ context.Context, p core.PortfolioItem) (core.PortfolioItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.portfolio[p.ID]
	if !ok {
		return core.PortfolioItem{}, fmt.Errorf("update portfolio item %d: %w", p.ID, core.ErrNotFound)
	}
	p.Username, p.PartnershipID = prev.Username, prev.PartnershipID
	s.portfolio[p.ID] = p
	return p, nil
}

func (s *Store) DeletePortfolioItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.portfolio[id]; !ok {
		return fmt.Errorf("delete portfolio item %d: %w", id, core.ErrNotFound)
	}
	delete(s.portfolio, id)
	return nil
}

func (s *Store) GetPortfolioItem(_ context.Context, id int64) (core.PortfolioItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.portfolio[id]
	if !ok {
		return core.PortfolioItem{}, fmt.Errorf("get portfolio item %d: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) listPortfolio(keep func(core.PortfolioItem) bool) []core.PortfolioItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.PortfolioItem
	for _, p := range s.portfolio {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListPortfolioByOwner(_ context.Context, username string) ([]core.PortfolioItem, error) {
	return s.listPortfolio(func(p core.PortfolioItem) bool { return p.Username == username }), nil
}

func (s *Store) ListPortfolioByOwners(_ context.Context, usernames []string) ([]core.PortfolioItem, error) {
	set := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		set[u] = true
	}
	return s.listPortfolio(func(p core.PortfolioItem) bool { return set[p.Username] }), nil
}

func (s *Store) ListPortfolioMerged(_ context.Context, username, partnershipID string) ([]core.PortfolioItem, error) {
	return s.listPortfolio(func(p core.PortfolioItem) bool {
		return p.PartnershipID == partnershipID || p.Username == username
	}), nil
}

// --- categories & vendors ---

func (s *Store) ListCategories(_ context.Context, kind string) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Category
	for _, c := range s.categories {
		if kind == "" || c.Kind == kind {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListVendors(_ context.Context, city, category string) ([]core.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Vendor
	for _, v := range s.vendors {
		if city != "" && v.City != city {
			continue
		}
		if category != "" && v.Category != category {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- notifications ---

func (s *Store) CreateNotification(_ context.Context, username, message string) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := core.Notification{
		ID:        s.id(),
		Username:  username,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.notifications[n.ID] = n
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, username string) ([]core.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Notification
	for _, n := range s.notifications {
		if n.Username == username {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return fmt.Errorf("mark notification %d read: %w", id, core.ErrNotFound)
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

// --- installment states ---

func (s *Store) UpsertInstallmentState(_ context.Context, st core.InstallmentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installments[st.ExpenseID] = st
	return nil
}

func (s *Store) DeleteInstallmentState(_ context.Context, expenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.installments, expenseID)
	return nil
}

func (s *Store) ListDueInstallments(_ context.Context, now time.Time, limit int) ([]core.InstallmentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.InstallmentState
	for _, st := range s.installments {
		if st.Remaining > 0 && !st.NextDue.After(now) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDue.Before(out[j].NextDue) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
