package sheets

import (
	"context"
	"time"

	"finfinance/internal/analysis"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends one monthly report row to an external sheet.
	ReportWriter interface {
		AppendReport(ctx context.Context, r Report) (rowRef string, err error)
	}
)

// Report is the flattened monthly analysis exported to a spreadsheet.
type Report struct {
	Year             int
	Period           string
	GeneratedAt      time.Time
	Score            int
	Tier             string
	Income           float64
	TotalSpent       float64
	TotalCredit      float64
	Balance          float64
	PctSpent         float64
	Tips             int
	Alerts           int
	PotentialSavings float64
}

// Header lists the column titles matching Row.
var Header = []any{
	"Period", "Generated at", "Score", "Tier", "Income", "Total spent",
	"Credit", "Balance", "% spent", "Tips", "Alerts", "Potential savings",
}

func NewReport(a analysis.Analysis, alerts int, at time.Time) Report {
	return Report{
		Year:             a.Period.Year,
		Period:           a.Period.String(),
		GeneratedAt:      at.UTC(),
		Score:            a.Score,
		Tier:             string(a.Diagnosis.Tier),
		Income:           a.Summary.Income.Float(),
		TotalSpent:       a.Summary.TotalSpent.Float(),
		TotalCredit:      a.Summary.TotalCredit.Float(),
		Balance:          a.Summary.Balance.Float(),
		PctSpent:         a.Summary.PctSpent,
		Tips:             len(a.Tips),
		Alerts:           alerts,
		PotentialSavings: a.TotalPotentialSavings.Float(),
	}
}

// Row returns the report values in Header order.
func (r Report) Row() []any {
	return []any{
		r.Period,
		r.GeneratedAt.Format(time.RFC3339),
		r.Score,
		r.Tier,
		r.Income,
		r.TotalSpent,
		r.TotalCredit,
		r.Balance,
		r.PctSpent,
		r.Tips,
		r.Alerts,
		r.PotentialSavings,
	}
}
