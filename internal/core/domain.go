package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryCash is the distinguished asset category whose values feed the
// shared budget. Only assets in this category are summed by the synchronizer.
const CategoryCash = "Nakit"

type (
	// User is an account identified by username. A user may be linked to a
	// partner; linked pairs share a partnership id that merges their
	// financial views.
	User struct {
		Username          string
		FullName          string
		PartnerUsername   string
		PartnershipID     string
		PortfolioInBudget bool
	}

	// Asset is a holding owned by a user. Category is free text; assets in
	// CategoryCash drive the budget. PartnershipID is stamped from the owner
	// at creation time and may be empty for assets recorded before a
	// partnership existed.
	Asset struct {
		ID            int64
		Username      string
		PartnershipID string
		Name          string
		Category      string
		Amount        decimal.Decimal
		Value         Money
	}

	// Budget is the derived cash total for a user. One row per username,
	// always written by the synchronizer or the explicit set-budget path.
	Budget struct {
		Username  string
		Amount    Money
		AddedBy   string
		UpdatedAt time.Time
	}

	// PortfolioItem is a foreign-currency or gold holding. Its monetary
	// contribution is derived (amount times rate), never stored.
	PortfolioItem struct {
		ID            int64
		Username      string
		PartnershipID string
		Kind          string // e.g. "USD", "EUR", "gram-altin"
		Amount        decimal.Decimal
		Rate          decimal.Decimal // lira per unit
	}

	// Expense is a spending record. Installments > 1 means the expense is
	// paid monthly; the remaining schedule lives in InstallmentState.
	Expense struct {
		ID            int64
		Username      string
		PartnershipID string
		Description   string
		Category      string
		Vendor        string
		Amount        Money
		Date          time.Time
		Installments  int
	}

	// InstallmentState tracks the unpaid tail of an installment expense.
	InstallmentState struct {
		ExpenseID int64
		NextDue   time.Time
		Remaining int
	}

	Category struct {
		ID   int64
		Name string
		Kind string // "asset" or "expense"
	}

	Vendor struct {
		ID       int64
		Name     string
		City     string
		Category string
		Phone    string
	}

	Notification struct {
		ID        int64
		Username  string
		Message   string
		Read      bool
		CreatedAt time.Time
	}

	// Dashboard is everything a client needs to render after a refresh
	// signal: own and partner data merged per the aggregation rules.
	Dashboard struct {
		Expenses       []Expense
		Assets         []Asset
		Portfolio      []PortfolioItem
		Budget         Budget
		PortfolioValue Money
		Names          map[string]string // username -> display name, self and partner
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMissingUsername  = errors.New("missing username")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid rate")
	ErrSelfPartner      = errors.New("cannot partner with self")
)

// IsCash reports whether the asset counts toward the budget.
func (a Asset) IsCash() bool {
	return a.Category == CategoryCash
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrMissingUsername
	}
	if strings.TrimSpace(a.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Value.Cents < 0 {
		return ErrInvalidAmount
	}
	if a.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (p PortfolioItem) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return ErrMissingUsername
	}
	if strings.TrimSpace(p.Kind) == "" {
		return ErrEmptyCategory
	}
	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.Rate.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}

// EffectiveValue is the derived monetary contribution of the holding,
// rounded half-up to whole kurus.
func (p PortfolioItem) EffectiveValue() Money {
	cents := p.Amount.Mul(p.Rate).Mul(decimal.NewFromInt(100)).Round(0)
	return Money{Cents: cents.IntPart()}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Username) == "" {
		return ErrMissingUsername
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if e.Installments < 0 {
		return errors.New("invalid installment count")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrMissingUsername
	}
	if u.PartnerUsername != "" && u.PartnerUsername == u.Username {
		return ErrSelfPartner
	}
	return nil
}

// HasPartner reports whether both a partner and a shared partnership id are
// known. The synchronizer and the asset queries branch on this.
func (u User) HasPartner() bool {
	return u.PartnerUsername != "" && u.PartnershipID != ""
}
