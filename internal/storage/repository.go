// Package storage implements the store ports over database/sql.
//
// The same repository serves both PostgreSQL (pgx stdlib driver) and SQLite
// (modernc, used for development and tests); every statement sticks to the
// SQL subset both engines accept, including $n placeholders and
// ON CONFLICT upserts.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"butce/internal/core"

	"github.com/shopspring/decimal"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// NewPostgresRepository opens a PostgreSQL-backed repository and applies
// pending migrations.
func NewPostgresRepository(dsn string) (*Repository, error) {
	return newRepository("pgx", dsn)
}

// NewSQLiteRepository opens a SQLite-backed repository at the given path,
// creating the parent directory if needed, and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	// Foreign keys are off by default in SQLite; without them the
	// installment-state cascade on expense deletion does not fire.
	return newRepository("sqlite", dbPath+"?_pragma=foreign_keys(1)")
}

func newRepository(driver, dsn string) (*Repository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(driver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func notFoundErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, full_name, partner_username, partnership_id, portfolio_in_budget)
		VALUES ($1, $2, $3, $4, $5)`,
		u.Username, u.FullName, u.PartnerUsername, u.PartnershipID, u.PortfolioInBudget)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, `
		SELECT username, full_name, partner_username, partnership_id, portfolio_in_budget
		FROM users WHERE username = $1`, username).
		Scan(&u.Username, &u.FullName, &u.PartnerUsername, &u.PartnershipID, &u.PortfolioInBudget)
	if err != nil {
		return core.User{}, notFoundErr("get user "+username, err)
	}
	return u, nil
}

func (r *Repository) LinkPartners(ctx context.Context, username, partner, partnershipID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link partners: %w", err)
	}
	defer tx.Rollback()

	for _, pair := range [][2]string{{username, partner}, {partner, username}} {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET partner_username = $1, partnership_id = $2 WHERE username = $3`,
			pair[1], partnershipID, pair[0])
		if err != nil {
			return fmt.Errorf("link partner %s: %w", pair[0], err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("link partner %s: %w", pair[0], core.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit link partners: %w", err)
	}

	slog.InfoContext(ctx, "Partners linked",
		"username", username,
		"partner", partner,
		"partnership_id", partnershipID)
	return nil
}

func (r *Repository) SetPortfolioInBudget(ctx context.Context, username string, included bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET portfolio_in_budget = $1 WHERE username = $2`, included, username)
	if err != nil {
		return fmt.Errorf("set portfolio inclusion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set portfolio inclusion: %w", core.ErrNotFound)
	}
	return nil
}

// --- assets ---

const assetColumns = `id, username, partnership_id, name, category, amount, value_cents`

func scanAsset(row interface{ Scan(...any) error }) (core.Asset, error) {
	var (
		a      core.Asset
		amount string
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PartnershipID, &a.Name, &a.Category, &amount, &a.Value.Cents); err != nil {
		return core.Asset{}, err
	}
	a.Amount = parseDecimal(amount)
	return a, nil
}

func (r *Repository) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO assets (username, partnership_id, name, category, amount, value_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.Username, a.PartnershipID, a.Name, a.Category, a.Amount.String(), a.Value.Cents).
		Scan(&a.ID)
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}

	slog.InfoContext(ctx, "Asset saved",
		"id", a.ID,
		"username", a.Username,
		"category", a.Category,
		"value_cents", a.Value.Cents)
	return a, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assets SET name = $1, category = $2, amount = $3, value_cents = $4
		WHERE id = $5`,
		a.Name, a.Category, a.Amount.String(), a.Value.Cents, a.ID)
	if err != nil {
		return core.Asset{}, fmt.Errorf("update asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Asset{}, fmt.Errorf("update asset %d: %w", a.ID, core.ErrNotFound)
	}
	return r.GetAsset(ctx, a.ID)
}

func (r *Repository) DeleteAsset(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete asset %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	a, err := scanAsset(r.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
	if err != nil {
		return core.Asset{}, notFoundErr("get asset "+strconv.FormatInt(id, 10), err)
	}
	return a, nil
}

func (r *Repository) listAssets(ctx context.Context, query string, args ...any) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []core.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *Repository) ListAssetsByOwner(ctx context.Context, username string) ([]core.Asset, error) {
	return r.listAssets(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE username = $1 ORDER BY id`, username)
}

func (r *Repository) ListAssetsByPartnership(ctx context.Context, partnershipID string) ([]core.Asset, error) {
	return r.listAssets(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE partnership_id = $1 ORDER BY id`, partnershipID)
}

func (r *Repository) ListAssetsMerged(ctx context.Context, username, partnershipID string) ([]core.Asset, error) {
	return r.listAssets(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE partnership_id = $1 OR username = $2 ORDER BY id`,
		partnershipID, username)
}

func (r *Repository) SumCashByOwner(ctx context.Context, username string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value_cents), 0) FROM assets
		WHERE username = $1 AND category = $2`,
		username, core.CategoryCash).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum cash assets: %w", err)
	}
	return total, nil
}

func (r *Repository) SumCashShared(ctx context.Context, username, partnershipID string) (int64, error) {
	// The OR filter is intentional: it picks up assets recorded before the
	// partnership existed (no partnership_id stamped) as well as assets
	// stamped with the shared id.
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value_cents), 0) FROM assets
		WHERE category = $1 AND (username = $2 OR partnership_id = $3)`,
		core.CategoryCash, username, partnershipID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum shared cash assets: %w", err)
	}
	return total, nil
}

// --- budgets ---

func (r *Repository) GetBudget(ctx context.Context, username string) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx, `
		SELECT username, amount_cents, added_by, updated_at
		FROM budgets WHERE username = $1`, username).
		Scan(&b.Username, &b.Amount.Cents, &b.AddedBy, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A user without a budget row has a zero budget, not an error.
			return core.Budget{Username: username}, nil
		}
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) UpsertBudget(ctx context.Context, username string, amountCents int64, addedBy string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (username, amount_cents, added_by, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (username) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			added_by = excluded.added_by,
			updated_at = CURRENT_TIMESTAMP`,
		username, amountCents, addedBy)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget upserted",
		"username", username,
		"amount_cents", amountCents,
		"added_by", addedBy)
	return nil
}

// --- expenses ---

const expenseColumns = `id, username, partnership_id, description, category, vendor, amount_cents, expense_date, installments`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.Username, &e.PartnershipID, &e.Description, &e.Category,
		&e.Vendor, &e.Amount.Cents, &e.Date, &e.Installments)
	return e, err
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO expenses (username, partnership_id, description, category, vendor, amount_cents, expense_date, installments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.Username, e.PartnershipID, e.Description, e.Category, e.Vendor,
		e.Amount.Cents, e.Date, e.Installments).
		Scan(&e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"username", e.Username,
		"description", e.Description,
		"amount_cents", e.Amount.Cents)
	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET description = $1, category = $2, vendor = $3, amount_cents = $4,
			expense_date = $5, installments = $6
		WHERE id = $7`,
		e.Description, e.Category, e.Vendor, e.Amount.Cents, e.Date, e.Installments, e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, core.ErrNotFound)
	}
	return r.GetExpense(ctx, e.ID)
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		return core.Expense{}, notFoundErr("get expense "+strconv.FormatInt(id, 10), err)
	}
	return e, nil
}

func (r *Repository) listExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *Repository) ListExpensesByOwner(ctx context.Context, username string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE username = $1 ORDER BY expense_date DESC, id DESC`,
		username)
}

func (r *Repository) ListExpensesByOwners(ctx context.Context, usernames []string) ([]core.Expense, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(usernames))
	args := make([]any, len(usernames))
	for i, u := range usernames {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = u
	}
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE username IN (`+strings.Join(placeholders, ", ")+`) ORDER BY expense_date DESC, id DESC`,
		args...)
}

func (r *Repository) ListExpensesMerged(ctx context.Context, username, partnershipID string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE partnership_id = $1 OR username = $2 ORDER BY expense_date DESC, id DESC`,
		partnershipID, username)
}

// --- portfolio ---

const portfolioColumns = `id, username, partnership_id, kind, amount, rate`

func scanPortfolioItem(row interface{ Scan(...any) error }) (core.PortfolioItem, error) {
	var (
		p            core.PortfolioItem
		amount, rate string
	)
	if err := row.Scan(&p.ID, &p.Username, &p.PartnershipID, &p.Kind, &amount, &rate); err != nil {
		return core.PortfolioItem{}, err
	}
	p.Amount = parseDecimal(amount)
	p.Rate = parseDecimal(rate)
	return p, nil
}

func (r *Repository) CreatePortfolioItem(ctx context.Context, p core.PortfolioItem) (core.PortfolioItem, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO portfolio (username, partnership_id, kind, amount, rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.Username, p.PartnershipID, p.Kind, p.Amount.String(), p.Rate.String()).
		Scan(&p.ID)
	if err != nil {
		return core.PortfolioItem{}, fmt.Errorf("create portfolio item: %w", err)
	}

	slog.InfoContext(ctx, "Portfolio item saved",
		"id", p.ID,
		"username", p.Username,
		"kind", p.Kind)
	return p, nil
}

func (r *Repository) UpdatePortfolioItem(ctx context.Context, p core.PortfolioItem) (core.PortfolioItem, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE portfolio SET kind = $1, amount = $2, rate = $3 WHERE id = $4`,
		p.Kind, p.Amount.String(), p.Rate.String(), p.ID)
	if err != nil {
		return core.PortfolioItem{}, fmt.Errorf("update portfolio item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.PortfolioItem{}, fmt.Errorf("update portfolio item %d: %w", p.ID, core.ErrNotFound)
	}
	return r.GetPortfolioItem(ctx, p.ID)
}

func (r *Repository) DeletePortfolioItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolio WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete portfolio item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete portfolio item %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) GetPortfolioItem(ctx context.Context, id int64) (core.PortfolioItem, error) {
	p, err := scanPortfolioItem(r.db.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolio WHERE id = $1`, id))
	if err != nil {
		return core.PortfolioItem{}, notFoundErr("get portfolio item "+strconv.FormatInt(id, 10), err)
	}
	return p, nil
}

func (r *Repository) listPortfolio(ctx context.Context, query string, args ...any) ([]core.PortfolioItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	defer rows.Close()

	var items []core.PortfolioItem
	for rows.Next() {
		p, err := scanPortfolioItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio item: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *Repository) ListPortfolioByOwner(ctx context.Context, username string) ([]core.PortfolioItem, error) {
	return r.listPortfolio(ctx,
		`SELECT `+portfolioColumns+` FROM portfolio WHERE username = $1 ORDER BY id`, username)
}

func (r *Repository) ListPortfolioByOwners(ctx context.Context, usernames []string) ([]core.PortfolioItem, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(usernames))
	args := make([]any, len(usernames))
	for i, u := range usernames {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = u
	}
	return r.listPortfolio(ctx,
		`SELECT `+portfolioColumns+` FROM portfolio WHERE username IN (`+strings.Join(placeholders, ", ")+`) ORDER BY id`,
		args...)
}

func (r *Repository) ListPortfolioMerged(ctx context.Context, username, partnershipID string) ([]core.PortfolioItem, error) {
	return r.listPortfolio(ctx,
		`SELECT `+portfolioColumns+` FROM portfolio WHERE partnership_id = $1 OR username = $2 ORDER BY id`,
		partnershipID, username)
}

// --- categories & vendors ---

func (r *Repository) ListCategories(ctx context.Context, kind string) ([]core.Category, error) {
	query := `SELECT id, name, kind FROM categories`
	var args []any
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) ListVendors(ctx context.Context, city, category string) ([]core.Vendor, error) {
	query := `SELECT id, name, city, category, phone FROM vendors`
	var (
		conds []string
		args  []any
	)
	if city != "" {
		args = append(args, city)
		conds = append(conds, "city = $"+strconv.Itoa(len(args)))
	}
	if category != "" {
		args = append(args, category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []core.Vendor
	for rows.Next() {
		var v core.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.Category, &v.Phone); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// --- notifications ---

func (r *Repository) CreateNotification(ctx context.Context, username, message string) (core.Notification, error) {
	n := core.Notification{Username: username, Message: message, CreatedAt: time.Now().UTC()}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (username, message, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		n.Username, n.Message, n.CreatedAt).
		Scan(&n.ID)
	if err != nil {
		return core.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (r *Repository) ListNotifications(ctx context.Context, username string) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, message, read, created_at
		FROM notifications WHERE username = $1 ORDER BY created_at DESC, id DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var n core.Notification
		if err := rows.Scan(&n.ID, &n.Username, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *Repository) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark notification %d read: %w", id, core.ErrNotFound)
	}
	return nil
}

// --- installment states ---

func (r *Repository) UpsertInstallmentState(ctx context.Context, s core.InstallmentState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO installment_states (expense_id, next_due, remaining)
		VALUES ($1, $2, $3)
		ON CONFLICT (expense_id) DO UPDATE SET
			next_due = excluded.next_due,
			remaining = excluded.remaining`,
		s.ExpenseID, s.NextDue, s.Remaining)
	if err != nil {
		return fmt.Errorf("upsert installment state: %w", err)
	}
	return nil
}

func (r *Repository) DeleteInstallmentState(ctx context.Context, expenseID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM installment_states WHERE expense_id = $1`, expenseID)
	if err != nil {
		return fmt.Errorf("delete installment state: %w", err)
	}
	return nil
}

func (r *Repository) ListDueInstallments(ctx context.Context, now time.Time, limit int) ([]core.InstallmentState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT expense_id, next_due, remaining
		FROM installment_states
		WHERE next_due <= $1 AND remaining > 0
		ORDER BY next_due
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due installments: %w", err)
	}
	defer rows.Close()

	var states []core.InstallmentState
	for rows.Next() {
		var s core.InstallmentState
		if err := rows.Scan(&s.ExpenseID, &s.NextDue, &s.Remaining); err != nil {
			return nil, fmt.Errorf("scan installment state: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}
