package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfinance/internal/core"
)

func expense(name string, cents int64, date core.Date, cat core.Category, pm core.PaymentMethod) core.Expense {
	return core.Expense{Name: name, Amount: core.Money{Cents: cents}, Date: date, Category: cat, PaymentMethod: pm}
}

func TestNewPeriod(t *testing.T) {
	cases := []struct {
		year, month int
		ok          bool
	}{
		{2025, 1, true},
		{1970, 12, true},
		{1969, 12, false},
		{2025, 0, false},
		{2025, 13, false},
	}
	for _, tc := range cases {
		_, err := NewPeriod(tc.year, tc.month)
		if tc.ok {
			assert.NoError(t, err, "%d-%d", tc.year, tc.month)
		} else {
			assert.ErrorIs(t, err, core.ErrInvalid, "%d-%d", tc.year, tc.month)
		}
	}
}

func TestPeriodWindow(t *testing.T) {
	feb := Period{Year: 2024, Month: 2}
	assert.Equal(t, "2024-02-01", feb.Start().String())
	assert.Equal(t, "2024-02-29", feb.End().String())
	assert.True(t, feb.Contains(core.NewDate(2024, 2, 1)))
	assert.True(t, feb.Contains(core.NewDate(2024, 2, 29)))
	assert.False(t, feb.Contains(core.NewDate(2024, 1, 31)))
	assert.False(t, feb.Contains(core.NewDate(2024, 3, 1)))

	assert.Equal(t, "2025-02-28", Period{Year: 2025, Month: 2}.End().String())
	assert.Equal(t, Period{Year: 2025, Month: 12}, Period{Year: 2026, Month: 1}.Add(-1))
	assert.Equal(t, Period{Year: 2027, Month: 2}, Period{Year: 2026, Month: 1}.Add(13))
	assert.Equal(t, "Jan/26", Period{Year: 2026, Month: 1}.Label())
}

func TestAggregate(t *testing.T) {
	feb := Period{Year: 2024, Month: 2}
	expenses := []core.Expense{
		expense("a", 1050, core.NewDate(2024, 2, 1), core.Food, core.Cash),
		expense("b", 2000, core.NewDate(2024, 2, 29), core.Food, core.Credit),
		expense("c", 333, core.NewDate(2024, 2, 15), core.Transport, core.Installment),
		expense("d", 99999, core.NewDate(2024, 1, 31), core.Food, core.Credit),
		expense("e", 99999, core.NewDate(2024, 3, 1), core.Housing, core.Debit),
	}
	bills := []core.FixedBill{
		{Name: "rent", Amount: core.Reais(1500), Active: true},
		{Name: "gym", Amount: core.Reais(100), Active: false},
	}

	totals := Aggregate(feb, expenses, bills)

	require.Len(t, totals.Expenses, 3)
	require.Len(t, totals.ByCategory, 2)
	assert.Equal(t, core.Food, totals.ByCategory[0].Category)
	assert.Equal(t, int64(3050), totals.ByCategory[0].Total.Cents)
	assert.Equal(t, core.Transport, totals.ByCategory[1].Category)
	assert.Equal(t, int64(3383), totals.TotalSpent.Cents)
	assert.Equal(t, int64(2333), totals.CreditExposure.Cents)
	assert.Equal(t, int64(150000), totals.FixedTotal.Cents)
	assert.Equal(t, int64(3050), totals.Spent(core.Food).Cents)
	assert.True(t, totals.Spent(core.Health).IsZero())

	var sum core.Money
	for _, ca := range totals.ByCategory {
		sum = sum.Add(ca.Total)
	}
	assert.Equal(t, totals.TotalSpent, sum)
}

func TestAggregateCardSpend(t *testing.T) {
	id := int64(7)
	other := int64(8)
	e1 := expense("a", 1000, core.NewDate(2025, 5, 3), core.Food, core.Credit)
	e1.CardID = &id
	e2 := expense("b", 500, core.NewDate(2025, 5, 4), core.Food, core.Credit)
	e2.CardID = &other
	e3 := expense("c", 700, core.NewDate(2025, 4, 30), core.Food, core.Credit)
	e3.CardID = &id

	totals := Aggregate(Period{Year: 2025, Month: 5}, []core.Expense{e1, e2, e3}, nil)
	assert.Equal(t, int64(1000), totals.CardSpend(id).Cents)
	assert.Equal(t, int64(500), totals.CardSpend(other).Cents)
	assert.True(t, totals.CardSpend(99).IsZero())
}

func TestPct(t *testing.T) {
	assert.Equal(t, 0.0, Pct(core.Reais(10), core.Zero))
	assert.Equal(t, 0.0, Pct(core.Reais(10), core.Money{Cents: -5}))
	assert.Equal(t, 35.0, Pct(core.Reais(1750), core.Reais(5000)))
	assert.Equal(t, 33.3, Round1(Pct(core.Reais(1), core.Reais(3))))
}
