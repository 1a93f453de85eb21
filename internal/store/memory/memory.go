// Package memory is a mutex-guarded in-memory record store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finfinance/internal/core"
	"finfinance/internal/store"
)

type table[T any] struct {
	next int64
	rows map[int64]T
}

func newTable[T any]() table[T] {
	return table[T]{next: 1, rows: make(map[int64]T)}
}

func (t *table[T]) insert(v T, setID func(*T, int64)) int64 {
	id := t.next
	t.next++
	setID(&v, id)
	t.rows[id] = v
	return id
}

func (t *table[T]) sorted() []T {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

// Store keeps every record in process memory. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	profile  *core.Profile
	incomes  table[core.ExtraIncome]
	cards    table[core.Card]
	bills    table[core.FixedBill]
	expenses table[core.Expense]
	alerts   table[core.Alert]
}

var _ store.Store = (*Store)(nil)

// New returns an empty store seeded lazily with the default profile.
func New() *Store {
	return &Store{
		now:      time.Now,
		incomes:  newTable[core.ExtraIncome](),
		cards:    newTable[core.Card](),
		bills:    newTable[core.FixedBill](),
		expenses: newTable[core.Expense](),
		alerts:   newTable[core.Alert](),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
}

// Profile

func (s *Store) GetProfile(_ context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		p := core.DefaultProfile()
		s.profile = &p
	}
	return *s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = core.ProfileID
	s.profile = &p
	return nil
}

// Extra incomes

func (s *Store) GetIncome(_ context.Context, id int64) (core.ExtraIncome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.incomes.rows[id]
	if !ok {
		return core.ExtraIncome{}, notFound("income", id)
	}
	return i, nil
}

func (s *Store) ListIncomes(_ context.Context, activeOnly bool) ([]core.ExtraIncome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.ExtraIncome{}
	for _, i := range s.incomes.sorted() {
		if activeOnly && !i.Active {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (s *Store) InsertIncome(_ context.Context, i core.ExtraIncome) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = s.now()
	}
	return s.incomes.insert(i, func(v *core.ExtraIncome, id int64) { v.ID = id }), nil
}

func (s *Store) ReplaceIncome(_ context.Context, i core.ExtraIncome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incomes.rows[i.ID]; !ok {
		return notFound("income", i.ID)
	}
	s.incomes.rows[i.ID] = i
	return nil
}

// Cards

func (s *Store) GetCard(_ context.Context, id int64) (core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards.rows[id]
	if !ok {
		return core.Card{}, notFound("card", id)
	}
	return c, nil
}

func (s *Store) ListCards(_ context.Context, activeOnly bool) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Card{}
	for _, c := range s.cards.sorted() {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) InsertCard(_ context.Context, c core.Card) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	return s.cards.insert(c, func(v *core.Card, id int64) { v.ID = id }), nil
}

func (s *Store) ReplaceCard(_ context.Context, c core.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards.rows[c.ID]; !ok {
		return notFound("card", c.ID)
	}
	s.cards.rows[c.ID] = c
	return nil
}

// Fixed bills

func (s *Store) GetBill(_ context.Context, id int64) (core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills.rows[id]
	if !ok {
		return core.FixedBill{}, notFound("bill", id)
	}
	return b, nil
}

func (s *Store) ListBills(_ context.Context, activeOnly bool) ([]core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.FixedBill{}
	for _, b := range s.bills.sorted() {
		if activeOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) InsertBill(_ context.Context, b core.FixedBill) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bills.insert(b, func(v *core.FixedBill, id int64) { v.ID = id }), nil
}

func (s *Store) ReplaceBill(_ context.Context, b core.FixedBill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills.rows[b.ID]; !ok {
		return notFound("bill", b.ID)
	}
	s.bills.rows[b.ID] = b
	return nil
}

// Expenses

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses.rows[id]
	if !ok {
		return core.Expense{}, notFound("expense", id)
	}
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, from, to core.Date) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, e := range s.expenses.sorted() {
		if store.InRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// InsertExpenses validates every row before storing any of them.
func (s *Store) InsertExpenses(_ context.Context, rows []core.Expense) ([]int64, error) {
	for i, e := range rows {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ids := make([]int64, 0, len(rows))
	for _, e := range rows {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		ids = append(ids, s.expenses.insert(e, func(v *core.Expense, id int64) { v.ID = id }))
	}
	return ids, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses.rows[id]; !ok {
		return notFound("expense", id)
	}
	delete(s.expenses.rows, id)
	return nil
}

func (s *Store) DeleteExpenseGroup(_ context.Context, groupID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID == "" {
		return 0, nil
	}
	n := 0
	for id, e := range s.expenses.rows {
		if e.GroupID == groupID {
			delete(s.expenses.rows, id)
			n++
		}
	}
	return n, nil
}

// Alerts

func (s *Store) ListAlerts(_ context.Context, unreadOnly bool) ([]core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Alert{}
	for _, a := range s.alerts.sorted() {
		if unreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) InsertAlerts(_ context.Context, alerts []core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, a := range alerts {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		s.alerts.insert(a, func(v *core.Alert, id int64) { v.ID = id })
	}
	return nil
}

// ClearAlerts drops every alert. Ids keep increasing across clears.
func (s *Store) ClearAlerts(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts.rows = make(map[int64]core.Alert)
	return nil
}

func (s *Store) MarkAlertsRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.alerts.rows {
		a.Read = true
		s.alerts.rows[id] = a
	}
	return nil
}
