package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProfileID is the id of the single implicit profile.
const ProfileID int64 = 1

// MaxInstallments bounds the installment count of a single purchase.
const MaxInstallments = 120

const maxNameLen = 200

// PaymentMethod tells how an expense was paid.
type PaymentMethod string

const (
	Cash        PaymentMethod = "cash"
	Debit       PaymentMethod = "debit"
	Credit      PaymentMethod = "credit"
	Installment PaymentMethod = "installment"
)

// IsCredit reports whether the method counts toward credit exposure.
func (p PaymentMethod) IsCredit() bool {
	return p == Credit || p == Installment
}

func (p PaymentMethod) Validate() error {
	switch p {
	case Cash, Debit, Credit, Installment:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, string(p))
}

// AlertType tags the rule that produced an alert.
type AlertType string

const (
	AlertCardDue AlertType = "vencimento"
	AlertBillDue AlertType = "conta_fixa"
	AlertLimit   AlertType = "limite"
	AlertBudget  AlertType = "orcamento"
)

// Alert priorities; lower sorts first.
const (
	PriorityHigh   = 1
	PriorityNormal = 2
)

type (
	Profile struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		Salary         Money  `json:"salary"`
		OtherIncome    Money  `json:"other_income"`
		Payday         int    `json:"payday"`
		Theme          string `json:"theme"`
		ThemeColor     string `json:"theme_color"`
		ThemeMode      string `json:"theme_mode"`
		OnboardingDone bool   `json:"onboarding_done"`
	}

	ExtraIncome struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Active      bool      `json:"active"`
		CreatedAt   time.Time `json:"created_at"`
	}

	Card struct {
		ID         int64     `json:"id"`
		Name       string    `json:"name"`
		Bank       string    `json:"bank"`
		Brand      string    `json:"brand"`
		Limit      Money     `json:"limit"`
		ClosingDay int       `json:"closing_day"`
		DueDay     int       `json:"due_day"`
		Color      string    `json:"color"`
		Active     bool      `json:"active"`
		CreatedAt  time.Time `json:"created_at"`
	}

	FixedBill struct {
		ID       int64    `json:"id"`
		Name     string   `json:"name"`
		Amount   Money    `json:"amount"`
		DueDay   int      `json:"due_day"`
		Category Category `json:"category"`
		Active   bool     `json:"active"`
	}

	Expense struct {
		ID               int64         `json:"id"`
		Name             string        `json:"name"`
		Amount           Money         `json:"amount"`
		Date             Date          `json:"date"`
		Category         Category      `json:"category"`
		PaymentMethod    PaymentMethod `json:"payment_method"`
		CardID           *int64        `json:"card_id"`
		InstallmentCount int           `json:"installment_count"`
		InstallmentIndex int           `json:"installment_index"`
		GroupID          string        `json:"group_id,omitempty"`
		Note             string        `json:"note"`
		CreatedAt        time.Time     `json:"created_at"`
	}

	Alert struct {
		ID        int64     `json:"id"`
		Type      AlertType `json:"type"`
		Message   string    `json:"message"`
		Priority  int       `json:"priority"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"created_at"`
	}
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid input")

var (
	ErrInvalidAmount        = fmt.Errorf("%w: amount must be positive", ErrInvalid)
	ErrInvalidDate          = fmt.Errorf("%w: date", ErrInvalid)
	ErrInvalidDay           = fmt.Errorf("%w: day of month must be 1-31", ErrInvalid)
	ErrInvalidCategory      = fmt.Errorf("%w: unknown category", ErrInvalid)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: unknown payment method", ErrInvalid)
	ErrInvalidInstallments  = fmt.Errorf("%w: installment count must be 1-%d", ErrInvalid, MaxInstallments)
	ErrInvalidLimit         = fmt.Errorf("%w: card limit must be positive", ErrInvalid)
	ErrEmptyName            = fmt.Errorf("%w: empty name", ErrInvalid)
	ErrNameTooLong          = fmt.Errorf("%w: name too long (max %d characters)", ErrInvalid, maxNameLen)
)

// DefaultProfile is the profile created on first boot.
func DefaultProfile() Profile {
	return Profile{
		ID:         ProfileID,
		Name:       "Usuário",
		Payday:     5,
		Theme:      "dark",
		ThemeColor: "roxo",
		ThemeMode:  "escuro",
	}
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyName
	}
	if len(s) > maxNameLen {
		return ErrNameTooLong
	}
	return nil
}

func validateDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Income is salary plus other income. Extra incomes are added by the caller.
func (p Profile) Income() Money {
	return p.Salary.Add(p.OtherIncome)
}

func (p Profile) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if p.Salary.Cents < 0 || p.OtherIncome.Cents < 0 {
		return fmt.Errorf("%w: income cannot be negative", ErrInvalid)
	}
	if err := validateDay(p.Payday); err != nil {
		return err
	}
	switch p.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("%w: theme must be dark or light", ErrInvalid)
	}
	return nil
}

func (i ExtraIncome) Validate() error {
	if len(i.Description) > maxNameLen {
		return ErrNameTooLong
	}
	return i.Amount.Validate()
}

func (c Card) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if c.Limit.Cents <= 0 {
		return ErrInvalidLimit
	}
	if err := validateDay(c.ClosingDay); err != nil {
		return err
	}
	return validateDay(c.DueDay)
}

func (b FixedBill) Validate() error {
	if err := validateName(b.Name); err != nil {
		return err
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := validateDay(b.DueDay); err != nil {
		return err
	}
	return b.Category.Validate()
}

// Validate checks a write request. InstallmentCount 0 is read as 1.
func (e Expense) Validate() error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := e.PaymentMethod.Validate(); err != nil {
		return err
	}
	if e.InstallmentCount < 0 || e.InstallmentCount > MaxInstallments {
		return ErrInvalidInstallments
	}
	return nil
}

// IsInstallmentPurchase reports whether the expense must be split.
func (e Expense) IsInstallmentPurchase() bool {
	return e.PaymentMethod == Installment && e.InstallmentCount > 1
}

// OnCard reports whether the expense is attributed to the given card.
func (e Expense) OnCard(id int64) bool {
	return e.CardID != nil && *e.CardID == id
}
