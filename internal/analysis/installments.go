package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"finfinance/internal/core"
)

// GroupIDFunc produces the shared id of an installment group.
type GroupIDFunc func() string

// NewGroupID returns a random UUID string.
func NewGroupID() string {
	return uuid.NewString()
}

// Expand turns an installment purchase into one row per installment.
//
// Each row gets round(total/count, 2); the rounding remainder is not moved to
// any row, so 100.00 in 3 installments is stored as 3 x 33.33. Row i is dated
// i months after the purchase, clamped to the end of shorter months, and
// named "<name> (i/count)". Anything else passes through as a single row with
// count 1, index 1 and no group.
func Expand(e core.Expense, newGroupID GroupIDFunc) []core.Expense {
	if !e.IsInstallmentPurchase() {
		single := e
		single.InstallmentCount = 1
		single.InstallmentIndex = 1
		single.GroupID = ""
		return []core.Expense{single}
	}
	if newGroupID == nil {
		newGroupID = NewGroupID
	}

	n := e.InstallmentCount
	gid := newGroupID()
	amount := e.Amount.Div(n)
	rows := make([]core.Expense, 0, n)
	for i := 0; i < n; i++ {
		row := e
		row.ID = 0
		row.Name = fmt.Sprintf("%s (%d/%d)", e.Name, i+1, n)
		row.Amount = amount
		row.Date = e.Date.AddMonths(i)
		row.InstallmentIndex = i + 1
		row.GroupID = gid
		rows = append(rows, row)
	}
	return rows
}
