package analysis

import "finfinance/internal/core"

// History returns monthsBack+1 monthly summaries ending at anchor, oldest
// first. Months without expenses have a zero total and no breakdown.
func History(expenses []core.Expense, anchor Period, monthsBack int) []core.MonthSummary {
	if monthsBack < 0 {
		monthsBack = 0
	}
	out := make([]core.MonthSummary, 0, monthsBack+1)
	for i := monthsBack; i >= 0; i-- {
		p := anchor.Add(-i)
		totals := Aggregate(p, expenses, nil)
		breakdown := totals.ByCategory
		if breakdown == nil {
			breakdown = []core.CategoryAmount{}
		}
		out = append(out, core.MonthSummary{
			Year:       p.Year,
			Month:      p.Month,
			Label:      p.Label(),
			Total:      totals.TotalSpent,
			ByCategory: breakdown,
		})
	}
	return out
}
