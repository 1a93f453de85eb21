// Package analysis derives monthly aggregates, the financial health score,
// alerts and spending history from a snapshot of records. Every function in
// this package is pure: callers read the snapshot and pass it in.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"finfinance/internal/core"
)

// MinYear is the earliest year accepted in a period key.
const MinYear = 1970

// ErrInvalidPeriod is returned for a malformed (year, month) key.
var ErrInvalidPeriod = fmt.Errorf("%w: period", core.ErrInvalid)

// Period is a calendar month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod validates and builds a period key.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the month containing d.
func PeriodOf(d core.Date) Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

// CurrentPeriod returns the month containing now.
func CurrentPeriod(now time.Time) Period {
	return PeriodOf(core.DateOf(now))
}

func (p Period) Validate() error {
	if p.Year < MinYear {
		return fmt.Errorf("%w: year must be >= %d", ErrInvalidPeriod, MinYear)
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month must be 1-12", ErrInvalidPeriod)
	}
	return nil
}

// Start is the first day of the month.
func (p Period) Start() core.Date { return core.NewDate(p.Year, p.Month, 1) }

// End is the last day of the month.
func (p Period) End() core.Date {
	return core.NewDate(p.Year, p.Month, core.DaysIn(p.Year, p.Month))
}

// Contains reports whether d falls in [Start, End], both ends inclusive.
func (p Period) Contains(d core.Date) bool {
	return !d.Before(p.Start()) && !d.After(p.End())
}

// Add moves the period by n months.
func (p Period) Add(n int) Period {
	return PeriodOf(p.Start().AddMonths(n))
}

var monthAbbr = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Label is the short chart label, e.g. "Jan/26".
func (p Period) Label() string {
	return fmt.Sprintf("%s/%02d", monthAbbr[p.Month-1], p.Year%100)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// PeriodTotals is the aggregated view of one month.
type PeriodTotals struct {
	Period         Period
	Expenses       []core.Expense        // expenses dated inside the period
	ByCategory     []core.CategoryAmount // category order, unknown categories last
	TotalSpent     core.Money
	CreditExposure core.Money
	FixedTotal     core.Money

	sums      map[core.Category]core.Money
	firstSeen map[core.Category]int
}

// Aggregate filters expenses into the period and sums them. Fixed bills are
// monthly and are not date filtered; only active ones count.
func Aggregate(p Period, expenses []core.Expense, bills []core.FixedBill) PeriodTotals {
	t := PeriodTotals{
		Period:    p,
		sums:      make(map[core.Category]core.Money),
		firstSeen: make(map[core.Category]int),
	}

	for _, e := range expenses {
		if !p.Contains(e.Date) {
			continue
		}
		if _, ok := t.firstSeen[e.Category]; !ok {
			t.firstSeen[e.Category] = len(t.firstSeen)
		}
		t.Expenses = append(t.Expenses, e)
		t.sums[e.Category] = t.sums[e.Category].Add(e.Amount)
		if e.PaymentMethod.IsCredit() {
			t.CreditExposure = t.CreditExposure.Add(e.Amount)
		}
	}

	for c, total := range t.sums {
		t.ByCategory = append(t.ByCategory, core.CategoryAmount{Category: c, Total: total})
		t.TotalSpent = t.TotalSpent.Add(total)
	}
	sort.Slice(t.ByCategory, func(i, j int) bool {
		ri, rj := t.ByCategory[i].Category.Rank(), t.ByCategory[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return t.ByCategory[i].Category < t.ByCategory[j].Category
	})

	for _, b := range bills {
		if b.Active {
			t.FixedTotal = t.FixedTotal.Add(b.Amount)
		}
	}
	return t
}

// Spent returns the period spend of one category.
func (t PeriodTotals) Spent(c core.Category) core.Money {
	return t.sums[c]
}

// AppearanceOrder returns the categories in the order they first occur in
// the period's expenses.
func (t PeriodTotals) AppearanceOrder() []core.Category {
	out := make([]core.Category, len(t.firstSeen))
	for c, i := range t.firstSeen {
		out[i] = c
	}
	return out
}

// CardSpend returns the period spend attributed to a card.
func (t PeriodTotals) CardSpend(cardID int64) core.Money {
	var total core.Money
	for _, e := range t.Expenses {
		if e.OnCard(cardID) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Pct returns part as a percentage of whole, or 0 when whole is not positive.
func Pct(part, whole core.Money) float64 {
	if whole.Cents <= 0 {
		return 0
	}
	return float64(part.Cents) * 100 / float64(whole.Cents)
}

// Round1 rounds to one decimal, half away from zero.
func Round1(v float64) float64 {
	return roundTo(v, 10)
}
