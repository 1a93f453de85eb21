package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finfinance/internal/core"
	"finfinance/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProfileSeededByMigration(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.ID != core.ProfileID || p.Name != "Usuário" || p.Payday != 5 || p.Theme != "dark" || p.OnboardingDone {
		t.Fatalf("unexpected seeded profile %+v", p)
	}

	p.Salary = core.Reais(5000)
	p.OnboardingDone = true
	if err := repo.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	got, _ := repo.GetProfile(ctx)
	if got.Salary.Cents != 500000 || !got.OnboardingDone {
		t.Fatalf("profile not saved: %+v", got)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil || v1 != v2 || v1 != 1 {
		t.Fatalf("unexpected versions v1=%d v2=%d err=%v", v1, v2, err)
	}
}

func TestCardRoundTripAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.InsertCard(ctx, core.Card{
		Name: "Nubank", Bank: "Nu", Brand: "Mastercard", Limit: core.Reais(3000),
		ClosingDay: 3, DueDay: 10, Color: "#8a05be", Active: true,
	})
	if err != nil {
		t.Fatalf("insert card: %v", err)
	}
	c, err := repo.GetCard(ctx, id)
	if err != nil || c.Name != "Nubank" || c.Limit.Cents != 300000 || !c.Active || c.CreatedAt.IsZero() {
		t.Fatalf("unexpected card %+v err=%v", c, err)
	}

	c.Active = false
	if err := repo.ReplaceCard(ctx, c); err != nil {
		t.Fatalf("replace card: %v", err)
	}
	if active, _ := repo.ListCards(ctx, true); len(active) != 0 {
		t.Fatalf("expected no active cards, got %v", active)
	}
	if all, _ := repo.ListCards(ctx, false); len(all) != 1 {
		t.Fatalf("soft-deleted card must still be listed")
	}
	if err := repo.ReplaceCard(ctx, core.Card{ID: 999, Name: "x", Limit: core.Reais(1)}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetCard(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBillsAndIncomes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	bid, err := repo.InsertBill(ctx, core.FixedBill{Name: "Rent", Amount: core.Reais(1500), DueDay: 5, Category: core.Housing, Active: true})
	if err != nil {
		t.Fatalf("insert bill: %v", err)
	}
	b, _ := repo.GetBill(ctx, bid)
	if b.Category != core.Housing || b.Amount.Cents != 150000 {
		t.Fatalf("unexpected bill %+v", b)
	}

	iid, _ := repo.InsertIncome(ctx, core.ExtraIncome{Description: "freela", Amount: core.Reais(800), Active: true})
	i, _ := repo.GetIncome(ctx, iid)
	i.Active = false
	if err := repo.ReplaceIncome(ctx, i); err != nil {
		t.Fatalf("replace income: %v", err)
	}
	if active, _ := repo.ListIncomes(ctx, true); len(active) != 0 {
		t.Fatalf("expected no active incomes")
	}
}

func TestExpensesBatchRangeAndGroupDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	cardID := int64(4)
	rows := []core.Expense{
		{Name: "TV (1/2)", Amount: core.Reais(50), Date: core.NewDate(2025, 1, 31), Category: core.Technology,
			PaymentMethod: core.Installment, CardID: &cardID, InstallmentCount: 2, InstallmentIndex: 1, GroupID: "g1"},
		{Name: "TV (2/2)", Amount: core.Reais(50), Date: core.NewDate(2025, 2, 28), Category: core.Technology,
			PaymentMethod: core.Installment, CardID: &cardID, InstallmentCount: 2, InstallmentIndex: 2, GroupID: "g1"},
		{Name: "Lunch", Amount: core.Reais(30), Date: core.NewDate(2025, 2, 1), Category: core.Food,
			PaymentMethod: core.Cash, InstallmentCount: 1, InstallmentIndex: 1, Note: "work"},
	}
	ids, err := repo.InsertExpenses(ctx, rows)
	if err != nil || len(ids) != 3 {
		t.Fatalf("insert: ids=%v err=%v", ids, err)
	}

	feb, err := repo.ListExpenses(ctx, core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28))
	if err != nil || len(feb) != 2 {
		t.Fatalf("unexpected february expenses %v err=%v", feb, err)
	}
	first, _ := repo.GetExpense(ctx, ids[0])
	if first.CardID == nil || *first.CardID != cardID || first.GroupID != "g1" || first.Date.String() != "2025-01-31" {
		t.Fatalf("unexpected round trip %+v", first)
	}
	lunch, _ := repo.GetExpense(ctx, ids[2])
	if lunch.CardID != nil || lunch.GroupID != "" || lunch.Note != "work" {
		t.Fatalf("unexpected single expense %+v", lunch)
	}

	n, err := repo.DeleteExpenseGroup(ctx, "g1")
	if err != nil || n != 2 {
		t.Fatalf("group delete n=%d err=%v", n, err)
	}
	if err := repo.DeleteExpense(ctx, ids[0]); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertExpensesRejectsInvalidBatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	good := core.Expense{Name: "a", Amount: core.Reais(1), Date: core.NewDate(2025, 1, 1), Category: core.Food, PaymentMethod: core.Cash}
	bad := good
	bad.Category = "Pets"
	if _, err := repo.InsertExpenses(ctx, []core.Expense{good, bad}); !errors.Is(err, core.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if all, _ := repo.ListExpenses(ctx, core.Date{}, core.Date{}); len(all) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(all))
	}
}

func TestAlertsClearAndMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.InsertAlerts(ctx, []core.Alert{
		{Type: core.AlertBudget, Message: "a", Priority: 1},
		{Type: core.AlertLimit, Message: "b", Priority: 2},
	}); err != nil {
		t.Fatalf("insert alerts: %v", err)
	}
	unread, _ := repo.ListAlerts(ctx, true)
	if len(unread) != 2 || unread[0].Type != core.AlertBudget {
		t.Fatalf("unexpected alerts %v", unread)
	}
	repo.MarkAlertsRead(ctx)
	if unread, _ := repo.ListAlerts(ctx, true); len(unread) != 0 {
		t.Fatalf("expected all read")
	}
	repo.ClearAlerts(ctx)
	if all, _ := repo.ListAlerts(ctx, false); len(all) != 0 {
		t.Fatalf("expected empty after clear")
	}
}

func TestCorruptCreatedAtIsReported(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.InsertAlerts(ctx, []core.Alert{{Type: core.AlertBudget, Message: "m", Priority: core.PriorityNormal}}); err != nil {
		t.Fatalf("insert alert: %v", err)
	}
	id, err := repo.InsertCard(ctx, core.Card{Name: "Nu", Limit: core.Reais(1000), ClosingDay: 1, DueDay: 10, Active: true})
	if err != nil {
		t.Fatalf("insert card: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `UPDATE alerts SET created_at = 'yesterday'`); err != nil {
		t.Fatalf("corrupt alert: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `UPDATE cards SET created_at = '' WHERE id = ?`, id); err != nil {
		t.Fatalf("corrupt card: %v", err)
	}

	if _, err := repo.ListAlerts(ctx, false); err == nil {
		t.Fatal("expected error for unparsable alert created_at")
	}
	if _, err := repo.GetCard(ctx, id); err == nil || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected parse error, got %v", err)
	}
}
