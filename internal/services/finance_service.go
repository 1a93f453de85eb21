package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"finfinance/internal/analysis"
	"finfinance/internal/core"
	"finfinance/internal/store"
)

const (
	dashboardHistoryMonths = 5 // plus the viewed month
	dashboardAlertLimit    = 15
	maxHistoryMonths       = 120
)

// AlertPublisher receives every freshly generated alert set.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, period analysis.Period, alerts []core.Alert) error
}

// FinanceService reads snapshots from the store and runs the analysis engine
// on them. It keeps no state between calls.
type FinanceService struct {
	store     store.Store
	engine    *analysis.Engine
	now       func() time.Time
	publisher AlertPublisher
	pubWait   time.Duration
	groupID   analysis.GroupIDFunc
}

// DefaultPublishTimeout bounds how long a regeneration waits on the broker.
const DefaultPublishTimeout = 2 * time.Second

// Option configures a FinanceService.
type Option func(*FinanceService)

// WithClock overrides the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) { s.now = now }
}

// WithPublisher publishes regenerated alerts.
func WithPublisher(p AlertPublisher) Option {
	return func(s *FinanceService) { s.publisher = p }
}

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *FinanceService) { s.pubWait = d }
}

// WithGroupIDs overrides the installment group id generator.
func WithGroupIDs(f analysis.GroupIDFunc) Option {
	return func(s *FinanceService) { s.groupID = f }
}

func NewFinanceService(st store.Store, engine *analysis.Engine, opts ...Option) *FinanceService {
	if engine == nil {
		engine = analysis.NewEngine(nil)
	}
	s := &FinanceService{
		store:   st,
		engine:  engine,
		now:     time.Now,
		pubWait: DefaultPublishTimeout,
		groupID: analysis.NewGroupID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pubWait <= 0 {
		s.pubWait = DefaultPublishTimeout
	}
	return s
}

// Engine exposes the scoring engine, e.g. for listing targets.
func (s *FinanceService) Engine() *analysis.Engine { return s.engine }

// Ping checks the underlying store.
func (s *FinanceService) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

// Close closes the underlying store.
func (s *FinanceService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

type snapshot struct {
	profile  core.Profile
	incomes  []core.ExtraIncome
	cards    []core.Card
	bills    []core.FixedBill
	expenses []core.Expense
}

func (sn snapshot) income() core.Money {
	total := sn.profile.Income()
	for _, i := range sn.incomes {
		total = total.Add(i.Amount)
	}
	return total
}

// loadSnapshot reads every collection concurrently. Expenses are limited to
// [from, to].
func (s *FinanceService) loadSnapshot(ctx context.Context, from, to core.Date) (snapshot, error) {
	var sn snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sn.profile, err = s.store.GetProfile(gctx)
		return err
	})
	g.Go(func() (err error) {
		sn.incomes, err = s.store.ListIncomes(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		sn.cards, err = s.store.ListCards(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		sn.bills, err = s.store.ListBills(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		sn.expenses, err = s.store.ListExpenses(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return sn, nil
}

func (s *FinanceService) today() core.Date {
	return core.DateOf(s.now())
}

// CardView is a card with its invoice for the viewed period.
type CardView struct {
	core.Card
	InvoiceAmount   core.Money `json:"invoice_amount"`
	AvailableCredit core.Money `json:"available_credit"`
	PctUsed         float64    `json:"pct_used"`
}

// HistoryPoint is one bar of the dashboard trend.
type HistoryPoint struct {
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// Dashboard is the monthly overview.
type Dashboard struct {
	Period              analysis.Period       `json:"period"`
	Profile             core.Profile          `json:"profile"`
	Income              core.Money            `json:"income"`
	TotalSpent          core.Money            `json:"total_spent"`
	Balance             core.Money            `json:"balance"`
	PctCommitted        float64               `json:"pct_committed"`
	ByCategory          []core.CategoryAmount `json:"by_category"`
	Cards               []CardView            `json:"cards"`
	FixedBills          []core.FixedBill      `json:"fixed_bills"`
	TotalFixed          core.Money            `json:"total_fixed"`
	History             []HistoryPoint        `json:"history"`
	ActiveAlerts        []core.Alert          `json:"active_alerts"`
	TotalCreditExposure core.Money            `json:"total_credit_exposure"`
}

// Dashboard regenerates the alerts and builds the monthly overview.
func (s *FinanceService) Dashboard(ctx context.Context, year, month int) (Dashboard, error) {
	p, err := analysis.NewPeriod(year, month)
	if err != nil {
		return Dashboard{}, err
	}
	sn, err := s.loadSnapshot(ctx, p.Add(-dashboardHistoryMonths).Start(), p.End())
	if err != nil {
		return Dashboard{}, err
	}

	income := sn.income()
	totals := analysis.Aggregate(p, sn.expenses, sn.bills)
	result := s.engine.Score(totals, income)

	if _, err := s.regenerateAlerts(ctx, p, sn, totals, result); err != nil {
		return Dashboard{}, err
	}
	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	if len(alerts) > dashboardAlertLimit {
		alerts = alerts[:dashboardAlertLimit]
	}

	cards := make([]CardView, 0, len(sn.cards))
	for _, c := range sn.cards {
		invoice := totals.CardSpend(c.ID)
		cards = append(cards, CardView{
			Card:            c,
			InvoiceAmount:   invoice,
			AvailableCredit: c.Limit.Sub(invoice),
			PctUsed:         analysis.Round1(analysis.Pct(invoice, c.Limit)),
		})
	}

	history := []HistoryPoint{}
	for _, m := range analysis.History(sn.expenses, p, dashboardHistoryMonths) {
		history = append(history, HistoryPoint{Label: m.Label, Total: m.Total})
	}

	byCategory := totals.ByCategory
	if byCategory == nil {
		byCategory = []core.CategoryAmount{}
	}
	bills := sn.bills
	if bills == nil {
		bills = []core.FixedBill{}
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}

	return Dashboard{
		Period:              p,
		Profile:             sn.profile,
		Income:              income,
		TotalSpent:          totals.TotalSpent,
		Balance:             income.Sub(totals.TotalSpent),
		PctCommitted:        analysis.Round1(analysis.Pct(totals.TotalSpent, income)),
		ByCategory:          byCategory,
		Cards:               cards,
		FixedBills:          bills,
		TotalFixed:          totals.FixedTotal,
		History:             history,
		ActiveAlerts:        alerts,
		TotalCreditExposure: totals.CreditExposure,
	}, nil
}

// Analysis scores one period.
func (s *FinanceService) Analysis(ctx context.Context, year, month int) (analysis.Analysis, error) {
	p, err := analysis.NewPeriod(year, month)
	if err != nil {
		return analysis.Analysis{}, err
	}
	sn, err := s.loadSnapshot(ctx, p.Start(), p.End())
	if err != nil {
		return analysis.Analysis{}, err
	}
	totals := analysis.Aggregate(p, sn.expenses, sn.bills)
	return s.engine.Score(totals, sn.income()), nil
}

// GenerateAlerts clears the alert store and fills it from the current
// snapshot. Due date rules use today; the limit and budget rules use the
// given period.
func (s *FinanceService) GenerateAlerts(ctx context.Context, year, month int) ([]core.Alert, error) {
	p, err := analysis.NewPeriod(year, month)
	if err != nil {
		return nil, err
	}
	sn, err := s.loadSnapshot(ctx, p.Start(), p.End())
	if err != nil {
		return nil, err
	}
	totals := analysis.Aggregate(p, sn.expenses, sn.bills)
	return s.regenerateAlerts(ctx, p, sn, totals, s.engine.Score(totals, sn.income()))
}

// regenerateAlerts is clear-then-insert; readers may briefly see no alerts.
func (s *FinanceService) regenerateAlerts(ctx context.Context, p analysis.Period, sn snapshot,
	totals analysis.PeriodTotals, result analysis.Analysis) ([]core.Alert, error) {
	now := s.now()
	alerts := analysis.GenerateAlerts(analysis.AlertInput{
		Today:    core.DateOf(now),
		Now:      now,
		Cards:    sn.cards,
		Bills:    sn.bills,
		Totals:   totals,
		Analysis: result,
	})

	if err := s.store.ClearAlerts(ctx); err != nil {
		return nil, fmt.Errorf("clear alerts: %w", err)
	}
	if err := s.store.InsertAlerts(ctx, alerts); err != nil {
		return nil, fmt.Errorf("insert alerts: %w", err)
	}
	stored, err := s.store.ListAlerts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	slog.DebugContext(ctx, "Alerts regenerated", "period", p.String(), "count", len(stored))

	if s.publisher != nil {
		pctx, cancel := context.WithTimeout(ctx, s.pubWait)
		err := s.publisher.PublishAlerts(pctx, p, stored)
		cancel()
		if err != nil {
			slog.ErrorContext(ctx, "Failed to publish alerts", "period", p.String(), "error", err)
		}
	}
	return stored, nil
}

// ListAlerts returns unread alerts, highest priority first, newest first
// within a priority.
func (s *FinanceService) ListAlerts(ctx context.Context) ([]core.Alert, error) {
	alerts, err := s.store.ListAlerts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	sortAlerts(alerts)
	return alerts, nil
}

func sortAlerts(alerts []core.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// MarkAlertsRead marks every alert as read.
func (s *FinanceService) MarkAlertsRead(ctx context.Context) error {
	if err := s.store.MarkAlertsRead(ctx); err != nil {
		return fmt.Errorf("mark alerts read: %w", err)
	}
	return nil
}

// History returns monthsBack+1 months ending at the current month.
func (s *FinanceService) History(ctx context.Context, monthsBack int) ([]core.MonthSummary, error) {
	if monthsBack < 0 || monthsBack > maxHistoryMonths {
		return nil, fmt.Errorf("%w: months must be 0-%d", core.ErrInvalid, maxHistoryMonths)
	}
	anchor := analysis.CurrentPeriod(s.now())
	expenses, err := s.store.ListExpenses(ctx, anchor.Add(-monthsBack).Start(), anchor.End())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return analysis.History(expenses, anchor, monthsBack), nil
}

// ExpenseView is an expense with its card's display fields.
type ExpenseView struct {
	core.Expense
	CardName  *string `json:"card_name"`
	CardColor *string `json:"card_color"`
}

// ListExpenses returns the period's expenses, newest date first and highest
// id first within a day.
func (s *FinanceService) ListExpenses(ctx context.Context, year, month int) ([]ExpenseView, error) {
	p, err := analysis.NewPeriod(year, month)
	if err != nil {
		return nil, err
	}
	var (
		expenses []core.Expense
		cards    []core.Card
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = s.store.ListExpenses(gctx, p.Start(), p.End())
		return err
	})
	g.Go(func() (err error) {
		cards, err = s.store.ListCards(gctx, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	byID := make(map[int64]core.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	out := make([]ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		v := ExpenseView{Expense: e}
		if e.CardID != nil {
			if c, ok := byID[*e.CardID]; ok {
				name, color := c.Name, c.Color
				v.CardName, v.CardColor = &name, &color
			}
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
