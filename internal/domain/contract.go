package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Due days are clamped into this range so every month has the date
const (
	MinDueDay = 1
	MaxDueDay = 28
)

// RentalContract binds a tenant to a unit
type RentalContract struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	RentalUnitID    string          `json:"rental_unit_id"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	Currency        Currency        `json:"currency"`
	PaymentDueDay   int             `json:"payment_due_day"`
	PaymentSchedule PaymentSchedule `json:"payment_schedule"`
	Status          ContractStatus  `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ApplyDefaults fills the values a new contract gets when the caller omits them
func (c *RentalContract) ApplyDefaults() {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.PaymentDueDay == 0 {
		c.PaymentDueDay = MinDueDay
	}
	if c.PaymentSchedule == "" {
		c.PaymentSchedule = PaymentScheduleMonthly
	}
	if c.Status == "" {
		c.Status = ContractStatusActive
	}
}

// Validate checks amounts, enums and dates
func (c *RentalContract) Validate() error {
	if c.TenantID == "" {
		return requiredErr("tenant_id")
	}
	if c.RentalUnitID == "" {
		return requiredErr("rental_unit_id")
	}
	if c.StartDate.IsZero() {
		return requiredErr("start_date")
	}
	if !c.MonthlyRent.IsPositive() {
		return ErrNonPositiveRent
	}
	if c.DepositAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end_date before start_date", ErrInvalidValue)
	}
	if c.PaymentDueDay < MinDueDay || c.PaymentDueDay > 31 {
		return fmt.Errorf("%w: payment_due_day %d", ErrInvalidValue, c.PaymentDueDay)
	}
	if !c.Currency.Valid() || !c.PaymentSchedule.Valid() || !c.Status.Valid() {
		return ErrInvalidValue
	}
	return nil
}

// GeneratesInitialPayment reports whether creating the contract schedules a first payment.
// Quarterly and annual cadences are not scheduled.
func (c *RentalContract) GeneratesInitialPayment() bool {
	return c.PaymentSchedule == PaymentScheduleMonthly
}

// FirstDueDate returns the first due date on or after today for dueDay
func FirstDueDate(today time.Time, dueDay int) time.Time {
	if dueDay < MinDueDay {
		dueDay = MinDueDay
	}
	if dueDay > MaxDueDay {
		dueDay = MaxDueDay
	}
	today = DateOnly(today)
	due := time.Date(today.Year(), today.Month(), dueDay, 0, 0, 0, 0, time.UTC)
	if due.Before(today) {
		due = due.AddDate(0, 1, 0)
	}
	return due
}

// DateOnly truncates t to midnight UTC
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func requiredErr(field string) error {
	return fmt.Errorf("%w: %s", ErrRequiredField, field)
}
