package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finfinance/internal/core"
	"finfinance/internal/store"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteRepository implements store.Store on a SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite store ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}

func activeClause(activeOnly bool) string {
	if activeOnly {
		return " WHERE active = 1"
	}
	return ""
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// Profile

func (r *SQLiteRepository) GetProfile(ctx context.Context) (core.Profile, error) {
	var p core.Profile
	var onboarding int
	err := r.db.QueryRowContext(ctx, `SELECT id, name, salary_cents, other_income_cents, payday,
		theme, theme_color, theme_mode, onboarding_done FROM profile WHERE id = ?`, core.ProfileID).
		Scan(&p.ID, &p.Name, &p.Salary.Cents, &p.OtherIncome.Cents, &p.Payday,
			&p.Theme, &p.ThemeColor, &p.ThemeMode, &onboarding)
	if errors.Is(err, sql.ErrNoRows) {
		p = core.DefaultProfile()
		if err := r.SaveProfile(ctx, p); err != nil {
			return core.Profile{}, err
		}
		return p, nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.OnboardingDone = onboarding == 1
	return p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profile (id, name, salary_cents, other_income_cents,
		payday, theme, theme_color, theme_mode, onboarding_done) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, salary_cents = excluded.salary_cents,
		other_income_cents = excluded.other_income_cents, payday = excluded.payday,
		theme = excluded.theme, theme_color = excluded.theme_color, theme_mode = excluded.theme_mode,
		onboarding_done = excluded.onboarding_done`,
		core.ProfileID, p.Name, p.Salary.Cents, p.OtherIncome.Cents, p.Payday,
		p.Theme, p.ThemeColor, p.ThemeMode, boolInt(p.OnboardingDone))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Extra incomes

const incomeColumns = `id, description, amount_cents, active, created_at`

func scanIncome(s scanner) (core.ExtraIncome, error) {
	var i core.ExtraIncome
	var active int
	var created string
	err := s.Scan(&i.ID, &i.Description, &i.Amount.Cents, &active, &created)
	if err != nil {
		return core.ExtraIncome{}, err
	}
	i.Active = active == 1
	if i.CreatedAt, err = parseTime(created); err != nil {
		return core.ExtraIncome{}, err
	}
	return i, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.ExtraIncome, error) {
	i, err := scanIncome(r.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM extra_incomes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExtraIncome{}, notFound("income", id)
	}
	if err != nil {
		return core.ExtraIncome{}, fmt.Errorf("get income: %w", err)
	}
	return i, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, activeOnly bool) ([]core.ExtraIncome, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+incomeColumns+` FROM extra_incomes`+activeClause(activeOnly)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()
	out := []core.ExtraIncome{}
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertIncome(ctx context.Context, i core.ExtraIncome) (int64, error) {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = r.now()
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO extra_incomes (description, amount_cents, active, created_at)
		VALUES (?, ?, ?, ?)`, i.Description, i.Amount.Cents, boolInt(i.Active), formatTime(i.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ReplaceIncome(ctx context.Context, i core.ExtraIncome) error {
	res, err := r.db.ExecContext(ctx, `UPDATE extra_incomes SET description = ?, amount_cents = ?, active = ?
		WHERE id = ?`, i.Description, i.Amount.Cents, boolInt(i.Active), i.ID)
	if err != nil {
		return fmt.Errorf("replace income: %w", err)
	}
	return requireRow(res, "income", i.ID)
}

// Cards

const cardColumns = `id, name, bank, brand, limit_cents, closing_day, due_day, color, active, created_at`

func scanCard(s scanner) (core.Card, error) {
	var c core.Card
	var active int
	var created string
	err := s.Scan(&c.ID, &c.Name, &c.Bank, &c.Brand, &c.Limit.Cents, &c.ClosingDay, &c.DueDay,
		&c.Color, &active, &created)
	if err != nil {
		return core.Card{}, err
	}
	c.Active = active == 1
	if c.CreatedAt, err = parseTime(created); err != nil {
		return core.Card{}, err
	}
	return c, nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id int64) (core.Card, error) {
	c, err := scanCard(r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, notFound("card", id)
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context, activeOnly bool) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards`+activeClause(activeOnly)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()
	out := []core.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertCard(ctx context.Context, c core.Card) (int64, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now()
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO cards (name, bank, brand, limit_cents, closing_day,
		due_day, color, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Bank, c.Brand, c.Limit.Cents, c.ClosingDay, c.DueDay, c.Color,
		boolInt(c.Active), formatTime(c.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ReplaceCard(ctx context.Context, c core.Card) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cards SET name = ?, bank = ?, brand = ?, limit_cents = ?,
		closing_day = ?, due_day = ?, color = ?, active = ? WHERE id = ?`,
		c.Name, c.Bank, c.Brand, c.Limit.Cents, c.ClosingDay, c.DueDay, c.Color, boolInt(c.Active), c.ID)
	if err != nil {
		return fmt.Errorf("replace card: %w", err)
	}
	return requireRow(res, "card", c.ID)
}

// Fixed bills

const billColumns = `id, name, amount_cents, due_day, category, active`

func scanBill(s scanner) (core.FixedBill, error) {
	var b core.FixedBill
	var active int
	var category string
	if err := s.Scan(&b.ID, &b.Name, &b.Amount.Cents, &b.DueDay, &category, &active); err != nil {
		return core.FixedBill{}, err
	}
	b.Category = core.Category(category)
	b.Active = active == 1
	return b, nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, id int64) (core.FixedBill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM fixed_bills WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.FixedBill{}, notFound("bill", id)
	}
	if err != nil {
		return core.FixedBill{}, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBills(ctx context.Context, activeOnly bool) ([]core.FixedBill, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+billColumns+` FROM fixed_bills`+activeClause(activeOnly)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()
	out := []core.FixedBill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertBill(ctx context.Context, b core.FixedBill) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO fixed_bills (name, amount_cents, due_day, category, active)
		VALUES (?, ?, ?, ?, ?)`, b.Name, b.Amount.Cents, b.DueDay, string(b.Category), boolInt(b.Active))
	if err != nil {
		return 0, fmt.Errorf("insert bill: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ReplaceBill(ctx context.Context, b core.FixedBill) error {
	res, err := r.db.ExecContext(ctx, `UPDATE fixed_bills SET name = ?, amount_cents = ?, due_day = ?,
		category = ?, active = ? WHERE id = ?`,
		b.Name, b.Amount.Cents, b.DueDay, string(b.Category), boolInt(b.Active), b.ID)
	if err != nil {
		return fmt.Errorf("replace bill: %w", err)
	}
	return requireRow(res, "bill", b.ID)
}

// Expenses

const expenseColumns = `id, name, amount_cents, date, category, payment_method, card_id,
	installment_count, installment_index, group_id, note, created_at`

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                core.Expense
		date, created    string
		category, method string
		cardID           sql.NullInt64
		groupID          sql.NullString
	)
	if err := s.Scan(&e.ID, &e.Name, &e.Amount.Cents, &date, &category, &method, &cardID,
		&e.InstallmentCount, &e.InstallmentIndex, &groupID, &e.Note, &created); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, err)
	}
	e.Date = d
	e.Category = core.Category(category)
	e.PaymentMethod = core.PaymentMethod(method)
	if cardID.Valid {
		id := cardID.Int64
		e.CardID = &id
	}
	e.GroupID = groupID.String
	if e.CreatedAt, err = parseTime(created); err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, notFound("expense", id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses compares ISO date text, which sorts in calendar order.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	var where []string
	var args []any
	if !from.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, from.String())
	}
	if !to.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, to.String())
	}
	q := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertExpenses writes all rows in one transaction.
func (r *SQLiteRepository) InsertExpenses(ctx context.Context, rows []core.Expense) ([]int64, error) {
	for i, e := range rows {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses (name, amount_cents, date, category,
		payment_method, card_id, installment_count, installment_index, group_id, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := r.now()
	ids := make([]int64, 0, len(rows))
	for _, e := range rows {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		var cardID sql.NullInt64
		if e.CardID != nil {
			cardID = sql.NullInt64{Int64: *e.CardID, Valid: true}
		}
		groupID := sql.NullString{String: e.GroupID, Valid: e.GroupID != ""}
		res, err := stmt.ExecContext(ctx, e.Name, e.Amount.Cents, e.Date.String(), string(e.Category),
			string(e.PaymentMethod), cardID, e.InstallmentCount, e.InstallmentIndex, groupID, e.Note,
			formatTime(e.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("insert expense: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	slog.DebugContext(ctx, "Expenses saved to SQLite", "count", len(ids))
	return ids, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res, "expense", id)
}

func (r *SQLiteRepository) DeleteExpenseGroup(ctx context.Context, groupID string) (int, error) {
	if groupID == "" {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE group_id = ?`, groupID)
	if err != nil {
		return 0, fmt.Errorf("delete expense group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// Alerts

func (r *SQLiteRepository) ListAlerts(ctx context.Context, unreadOnly bool) ([]core.Alert, error) {
	q := `SELECT id, type, message, priority, read, created_at FROM alerts`
	if unreadOnly {
		q += ` WHERE read = 0`
	}
	rows, err := r.db.QueryContext(ctx, q+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	out := []core.Alert{}
	for rows.Next() {
		var a core.Alert
		var typ, created string
		var read int
		if err := rows.Scan(&a.ID, &typ, &a.Message, &a.Priority, &read, &created); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Type = core.AlertType(typ)
		a.Read = read == 1
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("alert %d: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertAlerts(ctx context.Context, alerts []core.Alert) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	for _, a := range alerts {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO alerts (type, message, priority, read, created_at)
			VALUES (?, ?, ?, ?, ?)`, string(a.Type), a.Message, a.Priority, boolInt(a.Read),
			formatTime(a.CreatedAt)); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ClearAlerts(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
		return fmt.Errorf("clear alerts: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkAlertsRead(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE read = 0`); err != nil {
		return fmt.Errorf("mark alerts read: %w", err)
	}
	return nil
}
