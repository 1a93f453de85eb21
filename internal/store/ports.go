// Package store defines the record store ports used by the services.
package store

import (
	"context"
	"errors"

	"finfinance/internal/core"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters. List methods return records ordered by id.
type (
	ProfileStore interface {
		// GetProfile returns the singleton profile, creating it with
		// defaults when missing.
		GetProfile(ctx context.Context) (core.Profile, error)
		SaveProfile(ctx context.Context, p core.Profile) error
	}

	IncomeStore interface {
		GetIncome(ctx context.Context, id int64) (core.ExtraIncome, error)
		ListIncomes(ctx context.Context, activeOnly bool) ([]core.ExtraIncome, error)
		InsertIncome(ctx context.Context, i core.ExtraIncome) (int64, error)
		ReplaceIncome(ctx context.Context, i core.ExtraIncome) error
	}

	CardStore interface {
		GetCard(ctx context.Context, id int64) (core.Card, error)
		ListCards(ctx context.Context, activeOnly bool) ([]core.Card, error)
		InsertCard(ctx context.Context, c core.Card) (int64, error)
		ReplaceCard(ctx context.Context, c core.Card) error
	}

	BillStore interface {
		GetBill(ctx context.Context, id int64) (core.FixedBill, error)
		ListBills(ctx context.Context, activeOnly bool) ([]core.FixedBill, error)
		InsertBill(ctx context.Context, b core.FixedBill) (int64, error)
		ReplaceBill(ctx context.Context, b core.FixedBill) error
	}

	ExpenseStore interface {
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		// ListExpenses returns expenses dated in [from, to], both inclusive.
		// A zero bound is open.
		ListExpenses(ctx context.Context, from, to core.Date) ([]core.Expense, error)
		// InsertExpenses stores all rows or none and returns their ids.
		InsertExpenses(ctx context.Context, rows []core.Expense) ([]int64, error)
		DeleteExpense(ctx context.Context, id int64) error
		// DeleteExpenseGroup removes every row sharing the group id.
		DeleteExpenseGroup(ctx context.Context, groupID string) (int, error)
	}

	AlertStore interface {
		ListAlerts(ctx context.Context, unreadOnly bool) ([]core.Alert, error)
		InsertAlerts(ctx context.Context, alerts []core.Alert) error
		ClearAlerts(ctx context.Context) error
		MarkAlertsRead(ctx context.Context) error
	}

	// Store is the full record store.
	Store interface {
		ProfileStore
		IncomeStore
		CardStore
		BillStore
		ExpenseStore
		AlertStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// InRange reports whether d is inside [from, to] with zero bounds open.
func InRange(d, from, to core.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}
