package analysis

import (
	"fmt"
	"time"

	"finfinance/internal/core"
)

const (
	cardDueWindow  = 5
	billDueWindow  = 3
	limitWarnPct   = 80
	limitHighPct   = 95
	budgetAlertPct = 85
)

// AlertInput is the snapshot the alert rules run on. Today drives the due
// date rules and is independent of the viewed period.
type AlertInput struct {
	Today    core.Date
	Now      time.Time
	Cards    []core.Card
	Bills    []core.FixedBill
	Totals   PeriodTotals
	Analysis Analysis
}

// GenerateAlerts derives the full alert set. All alerts are unread.
func GenerateAlerts(in AlertInput) []core.Alert {
	alerts := []core.Alert{}
	add := func(t core.AlertType, prio int, msg string) {
		alerts = append(alerts, core.Alert{Type: t, Message: msg, Priority: prio, CreatedAt: in.Now})
	}
	today := in.Today.Day()

	for _, c := range in.Cards {
		if !c.Active {
			continue
		}
		if days := c.DueDay - today; days > 0 && days <= cardDueWindow {
			add(core.AlertCardDue, core.PriorityHigh, fmt.Sprintf("💳 %s is due in %d day(s)", c.Name, days))
		}
	}

	for _, b := range in.Bills {
		if !b.Active {
			continue
		}
		if days := b.DueDay - today; days > 0 && days <= billDueWindow {
			add(core.AlertBillDue, core.PriorityHigh, fmt.Sprintf("⚡ %s is due in %d day(s): %s", b.Name, days, b.Amount))
		}
	}

	for _, c := range in.Cards {
		if !c.Active || c.Limit.Cents <= 0 {
			continue
		}
		pct := Pct(in.Totals.CardSpend(c.ID), c.Limit)
		if pct <= limitWarnPct {
			continue
		}
		prio := core.PriorityNormal
		if pct > limitHighPct {
			prio = core.PriorityHigh
		}
		add(core.AlertLimit, prio, fmt.Sprintf("⚠️ %s: %d%% of the limit used", c.Name, pctInt(pct)))
	}

	if in.Analysis.Summary.PctSpent > budgetAlertPct {
		add(core.AlertBudget, core.PriorityHigh,
			fmt.Sprintf("🚨 You have already spent %d%% of this month's income", pctInt(in.Analysis.Summary.PctSpent)))
	}
	return alerts
}
