package analysis

import (
	"fmt"
	"math"
	"strconv"

	"finfinance/internal/core"
)

// DefaultRules returns the scoring rules in priority order. Tips are kept in
// the order the rules emit them, so this order decides what survives the
// truncation to eight tips.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "category_budgets", Apply: categoryBudgets},
		{Name: "overall_budget", Apply: overallBudget},
		{Name: "credit_exposure", Apply: creditExposure},
		{Name: "superfluous", Apply: superfluousSpending},
		{Name: "category_high", Apply: categoryHigh},
		{Name: "emergency_reserve", Apply: emergencyReserve},
		{Name: "food_delivery", Apply: foodDelivery},
	}
}

func pctInt(v float64) int {
	return int(math.Round(v))
}

func categoryBudgets(st State) Outcome {
	var out Outcome
	for _, cs := range st.Statuses {
		out.Delta -= Penalty(cs.pct, core.BudgetTarget{IdealPct: cs.IdealPct, MaxPct: cs.MaxPct})
	}
	return out
}

func overallBudget(st State) Outcome {
	if st.Income.Cents <= 0 {
		return Outcome{}
	}
	spent := st.Totals.TotalSpent
	switch {
	case st.PctSpent > 100:
		delta := spent.Sub(st.Income)
		return Outcome{Delta: -25, Tips: []Tip{{
			Icon:             "🚨",
			Level:            LevelCritical,
			Title:            "Budget exceeded!",
			Text:             fmt.Sprintf("You spent %s more than you earned this month. Review your expenses urgently.", delta),
			PotentialSavings: delta,
		}}}
	case st.PctSpent > 85:
		return Outcome{Delta: -15, Tips: []Tip{{
			Icon:             "⚠️",
			Level:            LevelHigh,
			Title:            "You are at the limit",
			Text:             fmt.Sprintf("You have committed %d%% of your income. Only %s is left for emergencies.", pctInt(st.PctSpent), st.Balance),
			PotentialSavings: spent.Mul(0.15),
		}}}
	case st.PctSpent > 70:
		return Outcome{Delta: -8, Tips: []Tip{{
			Icon:             "⚠️",
			Level:            LevelMedium,
			Title:            "High spending",
			Text:             fmt.Sprintf("You have committed %d%% of your income. Be careful not to exceed your budget.", pctInt(st.PctSpent)),
			PotentialSavings: spent.Mul(0.10),
		}}}
	case st.PctSpent < 50:
		return Outcome{Delta: 5, Strengths: []string{
			fmt.Sprintf("You are spending only %d%% of your income, excellent control!", pctInt(st.PctSpent)),
		}}
	}
	return Outcome{}
}

func creditExposure(st State) Outcome {
	credit := st.Totals.CreditExposure
	switch {
	case st.PctCredit > 40:
		return Outcome{Delta: -12, Tips: []Tip{{
			Icon:             "💳",
			Level:            LevelHigh,
			Title:            "Excessive credit use",
			Text:             fmt.Sprintf("%d%% of your income is on credit cards. This can lead to interest and debt.", pctInt(st.PctCredit)),
			PotentialSavings: credit.Mul(0.3),
		}}}
	case st.PctCredit > 25:
		return Outcome{Delta: -6, Tips: []Tip{{
			Icon:             "💳",
			Level:            LevelMedium,
			Title:            "Credit needs attention",
			Text:             fmt.Sprintf("%d%% of your income is on credit. Try paying with debit or cash when possible.", pctInt(st.PctCredit)),
			PotentialSavings: credit.Mul(0.2),
		}}}
	case st.PctCredit < 15:
		return Outcome{Strengths: []string{
			fmt.Sprintf("Conscious credit use, only %d%% of your income", pctInt(st.PctCredit)),
		}}
	}
	return Outcome{}
}

func superfluousSpending(st State) Outcome {
	superfluous := st.Buckets[core.BucketSuperfluous]
	pct := Pct(superfluous, st.Income)
	if pct <= 15 {
		return Outcome{}
	}
	return Outcome{Delta: -7, Tips: []Tip{{
		Icon:             "🛍️",
		Level:            LevelMedium,
		Title:            "High superfluous spending",
		Text:             fmt.Sprintf("Delivery and subscriptions are taking %d%% of your income. Consider possible cuts.", pctInt(pct)),
		PotentialSavings: superfluous.Mul(0.4),
	}}}
}

// categoryHigh emits one tip per category above its max, in the order the
// categories first appear in the month. Totals built without expenses fall
// back to ranked order.
func categoryHigh(st State) Outcome {
	high := make(map[core.Category]CategoryStatus)
	ranked := make([]core.Category, 0, len(st.Statuses))
	for _, cs := range st.Statuses {
		if cs.Status == StatusHigh {
			high[cs.Category] = cs
			ranked = append(ranked, cs.Category)
		}
	}
	order := st.Totals.AppearanceOrder()
	if len(order) == 0 {
		order = ranked
	}

	var out Outcome
	for _, c := range order {
		cs, ok := high[c]
		if !ok {
			continue
		}
		out.Tips = append(out.Tips, Tip{
			Icon:  "📊",
			Level: LevelMedium,
			Title: fmt.Sprintf("%s above ideal", cs.Category),
			Text: fmt.Sprintf("You spent %s%% of your income on %s. The ideal is up to %s%%. Try to cut back.",
				formatPct(cs.Pct), cs.Category, formatPct(cs.IdealPct)),
			PotentialSavings: cs.Total.Sub(st.Income.Percent(cs.IdealPct)),
		})
	}
	return out
}

func emergencyReserve(st State) Outcome {
	spent := st.Totals.TotalSpent
	if st.Balance.Cents <= 0 || spent.Cents <= 0 {
		return Outcome{}
	}
	months := float64(st.Balance.Cents) / float64(spent.Cents)
	switch {
	case months < 0.5:
		return Outcome{Delta: -5, Tips: []Tip{{
			Icon:             "🏦",
			Level:            LevelMedium,
			Title:            "Low emergency reserve",
			Text:             fmt.Sprintf("Your free balance (%s) covers less than 15 days. Try to save more.", st.Balance),
			PotentialSavings: spent.Mul(0.2),
		}}}
	case months >= 3:
		return Outcome{Delta: 8, Strengths: []string{
			"Excellent financial reserve, your balance covers more than 3 months of spending!",
		}}
	}
	return Outcome{}
}

func foodDelivery(st State) Outcome {
	food, delivery := st.Totals.Spent(core.Food), st.Totals.Spent(core.Delivery)
	if food.Cents <= 0 || delivery.Cents <= 0 {
		return Outcome{}
	}
	pct := Pct(food.Add(delivery), st.Income)
	if pct <= 25 {
		return Outcome{}
	}
	return Outcome{Tips: []Tip{{
		Icon:             "🍔",
		Level:            LevelMedium,
		Title:            "High food spending",
		Text:             fmt.Sprintf("Food + Delivery = %d%% of your income. Cooking at home can save a lot.", pctInt(pct)),
		PotentialSavings: delivery.Mul(0.7),
	}}}
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
