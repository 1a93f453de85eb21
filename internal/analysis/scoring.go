package analysis

import (
	"math"
	"sort"

	"finfinance/internal/core"
)

const (
	startScore = 100.0
	maxTips    = 8
)

// Level is the severity of a tip.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
)

// Status is the budget status of a category.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusHigh    Status = "high"
)

// Tip is an actionable piece of advice.
type Tip struct {
	Icon             string     `json:"icon"`
	Level            Level      `json:"level"`
	Title            string     `json:"title"`
	Text             string     `json:"text"`
	PotentialSavings core.Money `json:"potential_savings"`
}

// CategoryStatus compares a category's spend with its budget target.
type CategoryStatus struct {
	Category core.Category `json:"category"`
	Total    core.Money    `json:"total"`
	Pct      float64       `json:"pct"` // one decimal, for display
	IdealPct float64       `json:"ideal"`
	MaxPct   float64       `json:"max"`
	Status   Status        `json:"status"`
	Bucket   core.Bucket   `json:"bucket"`

	pct float64
}

// Summary holds the headline numbers of an analysis.
type Summary struct {
	Income           core.Money `json:"income"`
	TotalSpent       core.Money `json:"total_spent"`
	TotalCredit      core.Money `json:"total_credit"`
	Balance          core.Money `json:"balance"`
	PctSpent         float64    `json:"pct_spent"`
	PctCredit        float64    `json:"pct_credit"`
	SuperfluousTotal core.Money `json:"superfluous_total"`
	EssentialTotal   core.Money `json:"essential_total"`
	VariableTotal    core.Money `json:"variable_total"`
	InvestmentTotal  core.Money `json:"investment_total"`
}

// Analysis is the result of scoring one period.
type Analysis struct {
	Period                Period           `json:"period"`
	Score                 int              `json:"score"`
	Diagnosis             Diagnosis        `json:"diagnosis"`
	Tips                  []Tip            `json:"tips"`
	Strengths             []string         `json:"strengths"`
	CategoryStatuses      []CategoryStatus `json:"category_statuses"`
	Summary               Summary          `json:"summary"`
	TotalPotentialSavings core.Money       `json:"total_potential_savings"`
}

// State is the read-only input every rule sees.
type State struct {
	Totals    PeriodTotals
	Income    core.Money
	Balance   core.Money
	PctSpent  float64
	PctCredit float64
	Statuses  []CategoryStatus // ranked by spend
	Buckets   map[core.Bucket]core.Money
}

// Outcome is what one rule contributes to the result.
type Outcome struct {
	Tips      []Tip
	Strengths []string
	Delta     float64
}

// Rule is a named pure scoring step.
type Rule struct {
	Name  string
	Apply func(State) Outcome
}

// Engine scores periods against a set of budget targets.
type Engine struct {
	targets map[core.Category]core.BudgetTarget
	rules   []Rule
}

// NewEngine builds an engine over the default targets, with overrides
// applied on top. A nil map keeps the defaults.
func NewEngine(overrides map[core.Category]core.BudgetTarget) *Engine {
	targets := core.DefaultTargets()
	for c, t := range overrides {
		base, ok := targets[c]
		if !ok {
			base = core.FallbackTarget
		}
		base.IdealPct, base.MaxPct = t.IdealPct, t.MaxPct
		targets[c] = base
	}
	return &Engine{targets: targets, rules: DefaultRules()}
}

var defaultEngine = NewEngine(nil)

// Score runs the default engine.
func Score(totals PeriodTotals, income core.Money) Analysis {
	return defaultEngine.Score(totals, income)
}

// Target returns the budget target of c, falling back for unknown ones.
func (e *Engine) Target(c core.Category) core.BudgetTarget {
	if t, ok := e.targets[c]; ok {
		return t
	}
	return core.FallbackTarget
}

// Targets returns a copy of the targets in category order.
func (e *Engine) Targets() []TargetEntry {
	out := make([]TargetEntry, 0, len(core.Categories))
	for _, c := range core.Categories {
		out = append(out, TargetEntry{Category: c, BudgetTarget: e.Target(c)})
	}
	return out
}

// TargetEntry pairs a category with its target.
type TargetEntry struct {
	Category core.Category `json:"category"`
	core.BudgetTarget
}

// Score applies the rules in order and builds the analysis.
func (e *Engine) Score(totals PeriodTotals, income core.Money) Analysis {
	st := e.newState(totals, income)

	score := startScore
	tips := []Tip{}
	strengths := []string{}
	for _, r := range e.rules {
		out := r.Apply(st)
		tips = append(tips, out.Tips...)
		strengths = append(strengths, out.Strengths...)
		score += out.Delta
	}

	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	var savings core.Money
	for i := range tips {
		tips[i].PotentialSavings = tips[i].PotentialSavings.NonNegative()
		savings = savings.Add(tips[i].PotentialSavings)
	}

	final := int(math.Round(math.Max(0, math.Min(100, score))))
	return Analysis{
		Period:           totals.Period,
		Score:            final,
		Diagnosis:        Diagnose(final),
		Tips:             tips,
		Strengths:        strengths,
		CategoryStatuses: st.Statuses,
		Summary: Summary{
			Income:           income,
			TotalSpent:       totals.TotalSpent,
			TotalCredit:      totals.CreditExposure,
			Balance:          st.Balance,
			PctSpent:         Round1(st.PctSpent),
			PctCredit:        Round1(st.PctCredit),
			SuperfluousTotal: st.Buckets[core.BucketSuperfluous],
			EssentialTotal:   st.Buckets[core.BucketEssential],
			VariableTotal:    st.Buckets[core.BucketVariable],
			InvestmentTotal:  st.Buckets[core.BucketInvestment],
		},
		TotalPotentialSavings: savings,
	}
}

func (e *Engine) newState(totals PeriodTotals, income core.Money) State {
	st := State{
		Totals:    totals,
		Income:    income,
		Balance:   income.Sub(totals.TotalSpent),
		PctSpent:  Pct(totals.TotalSpent, income),
		PctCredit: Pct(totals.CreditExposure, income),
		Statuses:  []CategoryStatus{},
		Buckets:   make(map[core.Bucket]core.Money),
	}
	for _, ca := range totals.ByCategory {
		if ca.Total.IsZero() {
			continue
		}
		target := e.Target(ca.Category)
		pct := Pct(ca.Total, income)
		st.Statuses = append(st.Statuses, CategoryStatus{
			Category: ca.Category,
			Total:    ca.Total,
			Pct:      Round1(pct),
			IdealPct: target.IdealPct,
			MaxPct:   target.MaxPct,
			Status:   Classify(pct, target),
			Bucket:   target.Bucket,
			pct:      pct,
		})
		st.Buckets[target.Bucket] = st.Buckets[target.Bucket].Add(ca.Total)
	}
	sort.SliceStable(st.Statuses, func(i, j int) bool {
		return st.Statuses[i].Total.Cents > st.Statuses[j].Total.Cents
	})
	return st
}

// Classify maps a share of income to a budget status. Both bounds are
// strict: pct == max is a warning and pct == ideal is ok.
func Classify(pct float64, t core.BudgetTarget) Status {
	switch {
	case pct > t.MaxPct:
		return StatusHigh
	case pct > t.IdealPct:
		return StatusWarning
	default:
		return StatusOK
	}
}

// Penalty is the score deduction for a category at pct of income.
func Penalty(pct float64, t core.BudgetTarget) float64 {
	switch Classify(pct, t) {
	case StatusHigh:
		return math.Min(10, (pct-t.MaxPct)*1.5)
	case StatusWarning:
		return math.Min(5, (pct-t.IdealPct)*0.8)
	}
	return 0
}

func roundTo(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}
