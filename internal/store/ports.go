// Package store defines the ports the services consume. Implementations
// live in internal/storage (SQL) and internal/store/memory (tests, dev).
package store

import (
	"context"
	"time"

	"butce/internal/core"
)

type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, username string) (core.User, error)
		// LinkPartners writes the partner link on both rows and stamps the
		// shared partnership id.
		LinkPartners(ctx context.Context, username, partner, partnershipID string) error
		SetPortfolioInBudget(ctx context.Context, username string, included bool) error
	}

	AssetStore interface {
		CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error)
		UpdateAsset(ctx context.Context, a core.Asset) (core.Asset, error)
		DeleteAsset(ctx context.Context, id int64) error
		GetAsset(ctx context.Context, id int64) (core.Asset, error)
		// ListAssetsByOwner returns assets owned by a single username.
		ListAssetsByOwner(ctx context.Context, username string) ([]core.Asset, error)
		// ListAssetsByPartnership returns assets strictly matching the
		// partnership id, without a username union.
		ListAssetsByPartnership(ctx context.Context, partnershipID string) ([]core.Asset, error)
		// ListAssetsMerged returns assets matching the partnership id or
		// owned by the username.
		ListAssetsMerged(ctx context.Context, username, partnershipID string) ([]core.Asset, error)
		// SumCashByOwner sums value over the owner's cash assets. A missing
		// sum is returned as zero.
		SumCashByOwner(ctx context.Context, username string) (int64, error)
		// SumCashShared sums value over cash assets owned by the username OR
		// stamped with the partnership id.
		SumCashShared(ctx context.Context, username, partnershipID string) (int64, error)
	}

	BudgetStore interface {
		GetBudget(ctx context.Context, username string) (core.Budget, error)
		// UpsertBudget inserts or overwrites the single budget row keyed by
		// username.
		UpsertBudget(ctx context.Context, username string, amountCents int64, addedBy string) error
	}

	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id int64) error
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		ListExpensesByOwner(ctx context.Context, username string) ([]core.Expense, error)
		ListExpensesByOwners(ctx context.Context, usernames []string) ([]core.Expense, error)
		ListExpensesMerged(ctx context.Context, username, partnershipID string) ([]core.Expense, error)
	}

	PortfolioStore interface {
		CreatePortfolioItem(ctx context.Context, p core.PortfolioItem) (core.PortfolioItem, error)
		UpdatePortfolioItem(ctx context.Context, p core.PortfolioItem) (core.PortfolioItem, error)
		DeletePortfolioItem(ctx context.Context, id int64) error
		GetPortfolioItem(ctx context.Context, id int64) (core.PortfolioItem, error)
		ListPortfolioByOwner(ctx context.Context, username string) ([]core.PortfolioItem, error)
		ListPortfolioByOwners(ctx context.Context, usernames []string) ([]core.PortfolioItem, error)
		ListPortfolioMerged(ctx context.Context, username, partnershipID string) ([]core.PortfolioItem, error)
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, kind string) ([]core.Category, error)
	}

	VendorStore interface {
		ListVendors(ctx context.Context, city, category string) ([]core.Vendor, error)
	}

	NotificationStore interface {
		CreateNotification(ctx context.Context, username, message string) (core.Notification, error)
		ListNotifications(ctx context.Context, username string) ([]core.Notification, error)
		MarkNotificationRead(ctx context.Context, id int64) error
	}

	InstallmentStore interface {
		UpsertInstallmentState(ctx context.Context, s core.InstallmentState) error
		DeleteInstallmentState(ctx context.Context, expenseID int64) error
		// ListDueInstallments returns states whose next due date is not after
		// the given instant.
		ListDueInstallments(ctx context.Context, now time.Time, limit int) ([]core.InstallmentState, error)
	}
)

// Store is the full persistence surface the application needs.
type Store interface {
	UserStore
	AssetStore
	BudgetStore
	ExpenseStore
	PortfolioStore
	CategoryStore
	VendorStore
	NotificationStore
	InstallmentStore
	Close() error
}
