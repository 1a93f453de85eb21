package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finfinance/internal/analysis"
	"finfinance/internal/core"
	"finfinance/internal/store"
)

// ErrUnknownCard is returned when an expense references a card id that does
// not exist.
var ErrUnknownCard = fmt.Errorf("%w: unknown card", core.ErrInvalid)

// ErrInstallmentTooSmall is returned when splitting a purchase would store
// installments of zero cents.
var ErrInstallmentTooSmall = fmt.Errorf("%w: installment amount is below one cent", core.ErrInvalid)

// Profile

func (s *FinanceService) GetProfile(ctx context.Context) (core.Profile, error) {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// SaveProfile replaces the profile and marks onboarding as done.
func (s *FinanceService) SaveProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if p.Theme == "" {
		p.Theme = "dark"
	}
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	p.ID = core.ProfileID
	p.OnboardingDone = true
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// Extra incomes

func (s *FinanceService) ListIncomes(ctx context.Context) ([]core.ExtraIncome, error) {
	out, err := s.store.ListIncomes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return out, nil
}

func (s *FinanceService) CreateIncome(ctx context.Context, i core.ExtraIncome) (core.ExtraIncome, error) {
	if err := i.Validate(); err != nil {
		return core.ExtraIncome{}, err
	}
	i.ID = 0
	i.Active = true
	i.CreatedAt = s.now()
	id, err := s.store.InsertIncome(ctx, i)
	if err != nil {
		return core.ExtraIncome{}, fmt.Errorf("insert income: %w", err)
	}
	i.ID = id
	return i, nil
}

// UpdateIncome replaces the editable fields, keeping the active flag and
// creation time.
func (s *FinanceService) UpdateIncome(ctx context.Context, id int64, i core.ExtraIncome) (core.ExtraIncome, error) {
	if err := i.Validate(); err != nil {
		return core.ExtraIncome{}, err
	}
	cur, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return core.ExtraIncome{}, err
	}
	i.ID, i.Active, i.CreatedAt = id, cur.Active, cur.CreatedAt
	if err := s.store.ReplaceIncome(ctx, i); err != nil {
		return core.ExtraIncome{}, fmt.Errorf("replace income: %w", err)
	}
	return i, nil
}

// DeleteIncome deactivates the income.
func (s *FinanceService) DeleteIncome(ctx context.Context, id int64) error {
	cur, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return err
	}
	cur.Active = false
	return s.store.ReplaceIncome(ctx, cur)
}

// ExtraIncomeTotal sums the active extra incomes.
func (s *FinanceService) ExtraIncomeTotal(ctx context.Context) (core.Money, error) {
	incomes, err := s.ListIncomes(ctx)
	if err != nil {
		return core.Zero, err
	}
	var total core.Money
	for _, i := range incomes {
		total = total.Add(i.Amount)
	}
	return total, nil
}

// Cards

func (s *FinanceService) ListCards(ctx context.Context) ([]core.Card, error) {
	out, err := s.store.ListCards(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return out, nil
}

func (s *FinanceService) CreateCard(ctx context.Context, c core.Card) (core.Card, error) {
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	c.ID = 0
	c.Active = true
	c.CreatedAt = s.now()
	id, err := s.store.InsertCard(ctx, c)
	if err != nil {
		return core.Card{}, fmt.Errorf("insert card: %w", err)
	}
	c.ID = id
	return c, nil
}

func (s *FinanceService) UpdateCard(ctx context.Context, id int64, c core.Card) (core.Card, error) {
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	cur, err := s.store.GetCard(ctx, id)
	if err != nil {
		return core.Card{}, err
	}
	c.ID, c.Active, c.CreatedAt = id, cur.Active, cur.CreatedAt
	if err := s.store.ReplaceCard(ctx, c); err != nil {
		return core.Card{}, fmt.Errorf("replace card: %w", err)
	}
	return c, nil
}

// DeleteCard deactivates the card. Expenses keep referencing it.
func (s *FinanceService) DeleteCard(ctx context.Context, id int64) error {
	cur, err := s.store.GetCard(ctx, id)
	if err != nil {
		return err
	}
	cur.Active = false
	return s.store.ReplaceCard(ctx, cur)
}

// Fixed bills

func (s *FinanceService) ListBills(ctx context.Context) ([]core.FixedBill, error) {
	out, err := s.store.ListBills(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return out, nil
}

func (s *FinanceService) CreateBill(ctx context.Context, b core.FixedBill) (core.FixedBill, error) {
	if err := b.Validate(); err != nil {
		return core.FixedBill{}, err
	}
	b.ID = 0
	b.Active = true
	id, err := s.store.InsertBill(ctx, b)
	if err != nil {
		return core.FixedBill{}, fmt.Errorf("insert bill: %w", err)
	}
	b.ID = id
	return b, nil
}

func (s *FinanceService) UpdateBill(ctx context.Context, id int64, b core.FixedBill) (core.FixedBill, error) {
	if err := b.Validate(); err != nil {
		return core.FixedBill{}, err
	}
	cur, err := s.store.GetBill(ctx, id)
	if err != nil {
		return core.FixedBill{}, err
	}
	b.ID, b.Active = id, cur.Active
	if err := s.store.ReplaceBill(ctx, b); err != nil {
		return core.FixedBill{}, fmt.Errorf("replace bill: %w", err)
	}
	return b, nil
}

// DeleteBill deactivates the bill.
func (s *FinanceService) DeleteBill(ctx context.Context, id int64) error {
	cur, err := s.store.GetBill(ctx, id)
	if err != nil {
		return err
	}
	cur.Active = false
	return s.store.ReplaceBill(ctx, cur)
}

// Expenses

// CreateExpense validates the purchase, splits installment purchases into
// one row per month and stores all rows at once.
func (s *FinanceService) CreateExpense(ctx context.Context, e core.Expense) ([]core.Expense, error) {
	if e.InstallmentCount == 0 {
		e.InstallmentCount = 1
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.CardID != nil {
		if _, err := s.store.GetCard(ctx, *e.CardID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownCard, *e.CardID)
			}
			return nil, err
		}
	}

	e.ID = 0
	e.CreatedAt = s.now()
	rows := analysis.Expand(e, s.groupID)
	if err := validateRows(rows); err != nil {
		return nil, err
	}
	ids, err := s.store.InsertExpenses(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("insert expenses: %w", err)
	}
	for i := range rows {
		rows[i].ID = ids[i]
	}

	slog.InfoContext(ctx, "Expense created",
		"name", e.Name,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"rows", len(rows))
	return rows, nil
}

// validateRows checks the expanded rows, since the " (i/N)" suffix and the
// per-row split can break a request that was valid as a whole.
func validateRows(rows []core.Expense) error {
	for _, r := range rows {
		if r.InstallmentCount <= 1 {
			continue
		}
		if r.Amount.Cents <= 0 {
			return fmt.Errorf("%w: %d installments", ErrInstallmentTooSmall, r.InstallmentCount)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("installment %d/%d: %w", r.InstallmentIndex, r.InstallmentCount, err)
		}
	}
	return nil
}

// DeleteExpense removes the expense, or its whole installment group, and
// returns how many rows were removed.
func (s *FinanceService) DeleteExpense(ctx context.Context, id int64) (int, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return 0, err
	}
	if e.GroupID != "" {
		n, err := s.store.DeleteExpenseGroup(ctx, e.GroupID)
		if err != nil {
			return 0, fmt.Errorf("delete expense group: %w", err)
		}
		return n, nil
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return 0, err
	}
	return 1, nil
}
