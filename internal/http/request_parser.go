// Package http exposes the REST API over the services layer.
//
// This file holds the wire payloads and parsing helpers. Monetary fields
// travel as lira decimal numbers and dates as YYYY-MM-DD strings.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"butce/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB

const dateLayout = "2006-01-02"

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// queryUsername reads the required username query parameter.
func queryUsername(r *http.Request) (string, error) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		return "", core.ErrMissingUsername
	}
	return username, nil
}

type AssetPayload struct {
	ID            int64           `json:"id,omitempty"`
	Username      string          `json:"username"`
	PartnershipID string          `json:"partnership_id,omitempty"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Value         core.Money      `json:"value"`
}

func (p AssetPayload) toCore() core.Asset {
	return core.Asset{
		ID:            p.ID,
		Username:      strings.TrimSpace(p.Username),
		PartnershipID: p.PartnershipID,
		Name:          strings.TrimSpace(p.Name),
		Category:      strings.TrimSpace(p.Category),
		Amount:        p.Amount,
		Value:         p.Value,
	}
}

func newAssetPayload(a core.Asset) AssetPayload {
	return AssetPayload{
		ID:            a.ID,
		Username:      a.Username,
		PartnershipID: a.PartnershipID,
		Name:          a.Name,
		Category:      a.Category,
		Amount:        a.Amount,
		Value:         a.Value,
	}
}

func newAssetPayloads(assets []core.Asset) []AssetPayload {
	out := make([]AssetPayload, 0, len(assets))
	for _, a := range assets {
		out = append(out, newAssetPayload(a))
	}
	return out
}

type ExpensePayload struct {
	ID            int64      `json:"id,omitempty"`
	Username      string     `json:"username"`
	PartnershipID string     `json:"partnership_id,omitempty"`
	Description   string     `json:"description"`
	Category      string     `json:"category,omitempty"`
	Vendor        string     `json:"vendor,omitempty"`
	Amount        core.Money `json:"amount"`
	Date          string     `json:"date,omitempty"`
	Installments  int        `json:"installments,omitempty"`
}

func (p ExpensePayload) toCore() (core.Expense, error) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if p.Date != "" {
		parsed, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return core.Expense{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", p.Date)
		}
		date = parsed
	}
	return core.Expense{
		ID:            p.ID,
		Username:      strings.TrimSpace(p.Username),
		PartnershipID: p.PartnershipID,
		Description:   strings.TrimSpace(p.Description),
		Category:      strings.TrimSpace(p.Category),
		Vendor:        strings.TrimSpace(p.Vendor),
		Amount:        p.Amount,
		Date:          date,
		Installments:  p.Installments,
	}, nil
}

func newExpensePayload(e core.Expense) ExpensePayload {
	return ExpensePayload{
		ID:            e.ID,
		Username:      e.Username,
		PartnershipID: e.PartnershipID,
		Description:   e.Description,
		Category:      e.Category,
		Vendor:        e.Vendor,
		Amount:        e.Amount,
		Date:          e.Date.Format(dateLayout),
		Installments:  e.Installments,
	}
}

func newExpensePayloads(expenses []core.Expense) []ExpensePayload {
	out := make([]ExpensePayload, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, newExpensePayload(e))
	}
	return out
}

type PortfolioPayload struct {
	ID             int64           `json:"id,omitempty"`
	Username       string          `json:"username"`
	PartnershipID  string          `json:"partnership_id,omitempty"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Rate           decimal.Decimal `json:"rate"`
	EffectiveValue core.Money      `json:"effective_value"`
}

func (p PortfolioPayload) toCore() core.PortfolioItem {
	return core.PortfolioItem{
		ID:            p.ID,
		Username:      strings.TrimSpace(p.Username),
		PartnershipID: p.PartnershipID,
		Kind:          strings.TrimSpace(p.Kind),
		Amount:        p.Amount,
		Rate:          p.Rate,
	}
}

func newPortfolioPayload(item core.PortfolioItem) PortfolioPayload {
	return PortfolioPayload{
		ID:             item.ID,
		Username:       item.Username,
		PartnershipID:  item.PartnershipID,
		Kind:           item.Kind,
		Amount:         item.Amount,
		Rate:           item.Rate,
		EffectiveValue: item.EffectiveValue(),
	}
}

func newPortfolioPayloads(items []core.PortfolioItem) []PortfolioPayload {
	out := make([]PortfolioPayload, 0, len(items))
	for _, item := range items {
		out = append(out, newPortfolioPayload(item))
	}
	return out
}

type UserPayload struct {
	Username          string `json:"username"`
	FullName          string `json:"full_name,omitempty"`
	PartnerUsername   string `json:"partner_username,omitempty"`
	PartnershipID     string `json:"partnership_id,omitempty"`
	PortfolioInBudget bool   `json:"portfolio_in_budget"`
}

func (p UserPayload) toCore() core.User {
	return core.User{
		Username:          strings.TrimSpace(p.Username),
		FullName:          strings.TrimSpace(p.FullName),
		PartnerUsername:   strings.TrimSpace(p.PartnerUsername),
		PartnershipID:     p.PartnershipID,
		PortfolioInBudget: p.PortfolioInBudget,
	}
}

func newUserPayload(u core.User) UserPayload {
	return UserPayload{
		Username:          u.Username,
		FullName:          u.FullName,
		PartnerUsername:   u.PartnerUsername,
		PartnershipID:     u.PartnershipID,
		PortfolioInBudget: u.PortfolioInBudget,
	}
}

type BudgetPayload struct {
	Username  string     `json:"username"`
	Amount    core.Money `json:"amount"`
	AddedBy   string     `json:"added_by,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}

func newBudgetPayload(b core.Budget) BudgetPayload {
	return BudgetPayload{
		Username:  b.Username,
		Amount:    b.Amount,
		AddedBy:   b.AddedBy,
		UpdatedAt: b.UpdatedAt,
	}
}

type NotificationPayload struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotificationPayloads(notifications []core.Notification) []NotificationPayload {
	out := make([]NotificationPayload, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationPayload{
			ID:        n.ID,
			Username:  n.Username,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
