package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateAddMonths(t *testing.T) {
	cases := []struct {
		from Date
		n    int
		want string
	}{
		{NewDate(2025, 1, 15), 1, "2025-02-15"},
		{NewDate(2025, 1, 31), 1, "2025-02-28"},
		{NewDate(2024, 1, 31), 1, "2024-02-29"},
		{NewDate(2025, 3, 31), 1, "2025-04-30"},
		{NewDate(2025, 11, 30), 2, "2026-01-30"},
		{NewDate(2025, 12, 5), 13, "2027-01-05"},
	}
	for _, tc := range cases {
		if got := tc.from.AddMonths(tc.n).String(); got != tc.want {
			t.Errorf("%s +%d expected %s, got %s", tc.from, tc.n, tc.want, got)
		}
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, 2) != 29 || DaysIn(2025, 2) != 28 || DaysIn(1900, 2) != 28 || DaysIn(2000, 2) != 29 {
		t.Fatalf("february length is not leap-year aware")
	}
	if DaysIn(2025, 4) != 30 || DaysIn(2025, 12) != 31 {
		t.Fatalf("unexpected month length")
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2025-03-09"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.D.Equal(NewDate(2025, 3, 9).Time) {
		t.Fatalf("unexpected date %v", v.D)
	}
	b, _ := json.Marshal(v)
	if string(b) != `{"d":"2025-03-09"}` {
		t.Fatalf("unexpected json %s", b)
	}
	if err := json.Unmarshal([]byte(`{"d":"09/03/2025"}`), &v); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Name:          "ok",
		Amount:        Money{Cents: 100},
		Date:          NewDate(2025, 1, 1),
		Category:      Food,
		PaymentMethod: Cash,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	mutate := func(f func(*Expense)) Expense {
		e := good
		f(&e)
		return e
	}
	bads := []Expense{
		mutate(func(e *Expense) { e.Date = Date{} }),
		mutate(func(e *Expense) { e.Name = "  " }),
		mutate(func(e *Expense) { e.Name = strings.Repeat("a", 201) }),
		mutate(func(e *Expense) { e.Amount = Money{} }),
		mutate(func(e *Expense) { e.Category = "Pets" }),
		mutate(func(e *Expense) { e.PaymentMethod = "pix" }),
		mutate(func(e *Expense) { e.InstallmentCount = MaxInstallments + 1 }),
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("case %d expected ErrInvalid, got %v", i, err)
		}
	}
}

func TestCardAndBillValidate(t *testing.T) {
	card := Card{Name: "Nubank", Limit: Reais(5000), ClosingDay: 3, DueDay: 10}
	if err := card.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	card.Limit = Zero
	if err := card.Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	card.Limit = Reais(1)
	card.DueDay = 32
	if err := card.Validate(); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}

	bill := FixedBill{Name: "Rent", Amount: Reais(1500), DueDay: 5, Category: Housing}
	if err := bill.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bill.Category = "Rent"
	if err := bill.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestProfileDefaults(t *testing.T) {
	p := DefaultProfile()
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
	if p.ID != ProfileID || p.Payday != 5 || p.OnboardingDone {
		t.Fatalf("unexpected defaults %+v", p)
	}
	p.Salary = Reais(3000)
	p.OtherIncome = Reais(500)
	if p.Income().Cents != 350000 {
		t.Fatalf("expected income 3500.00, got %v", p.Income())
	}
}

func TestCategories(t *testing.T) {
	if len(Categories) != 13 || len(DefaultTargets()) != 13 {
		t.Fatalf("expected 13 categories")
	}
	for i, c := range Categories {
		if !c.Valid() || c.Rank() != i {
			t.Fatalf("category %s has unexpected rank/validity", c)
		}
	}
	if Category("Pets").Rank() != len(Categories) {
		t.Fatalf("unknown category must rank last")
	}
	targets := DefaultTargets()
	targets[Food] = BudgetTarget{}
	if DefaultTargets()[Food].IdealPct != 15 {
		t.Fatalf("DefaultTargets must return a copy")
	}
}
