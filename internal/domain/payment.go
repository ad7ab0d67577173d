package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptGrain is the timestamp layout used in receipt numbers
type ReceiptGrain string

const (
	// ReceiptGrainMinute is used for payments created on request
	ReceiptGrainMinute ReceiptGrain = "200601021504"
	// ReceiptGrainDay is used for payments generated with a contract
	ReceiptGrainDay ReceiptGrain = "20060102"
)

// RentPayment is one due-date obligation under a contract
type RentPayment struct {
	ID               string            `json:"id"`
	RentalContractID string            `json:"rental_contract_id"`
	DueDate          time.Time         `json:"due_date"`
	PaidDate         *time.Time        `json:"paid_date,omitempty"`
	AmountDue        decimal.Decimal   `json:"amount_due"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	LateFee          *decimal.Decimal  `json:"late_fee,omitempty"`
	Currency         Currency          `json:"currency"`
	Status           RentPaymentStatus `json:"status"`
	PaymentMethod    PaymentMethod     `json:"payment_method"`
	ReferenceNumber  string            `json:"reference_number,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	ReceiptNumber    string            `json:"receipt_number"`
	ReceiptSent      bool              `json:"receipt_sent"`
	ReceiptSentAt    *time.Time        `json:"receipt_sent_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewRentPayment builds a pending payment with nothing paid
func NewRentPayment(contractID string, dueDate time.Time, amountDue decimal.Decimal, currency Currency, grain ReceiptGrain, now time.Time) (*RentPayment, error) {
	if contractID == "" {
		return nil, requiredErr("rental_contract_id")
	}
	if dueDate.IsZero() {
		return nil, requiredErr("due_date")
	}
	if !amountDue.IsPositive() {
		return nil, ErrNonPositiveRent
	}
	if !currency.Valid() {
		return nil, fmt.Errorf("%w: currency %q", ErrInvalidValue, currency)
	}

	now = now.UTC()
	zero := decimal.Zero
	return &RentPayment{
		ID:               uuid.New().String(),
		RentalContractID: contractID,
		DueDate:          DateOnly(dueDate),
		AmountDue:        amountDue,
		AmountPaid:       decimal.Zero,
		LateFee:          &zero,
		Currency:         currency,
		Status:           RentPaymentStatusPending,
		PaymentMethod:    PaymentMethodUnknown,
		ReceiptNumber:    NewReceiptNumber(contractID, now, grain),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Recording holds the operator-supplied facts of a payment
type Recording struct {
	AmountPaid      decimal.Decimal
	PaidDate        time.Time
	PaymentMethod   PaymentMethod
	ReferenceNumber string
	LateFee         *decimal.Decimal
	Notes           string
}

// Record overwrites the mutable fields and recomputes the status
func (p *RentPayment) Record(r Recording, now time.Time) error {
	if r.AmountPaid.IsNegative() {
		return ErrNegativeAmount
	}
	if r.LateFee != nil && r.LateFee.IsNegative() {
		return ErrNegativeAmount
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentMethodUnknown
	}
	if !r.PaymentMethod.Valid() {
		return fmt.Errorf("%w: payment method %q", ErrInvalidValue, r.PaymentMethod)
	}

	now = now.UTC()
	paid := r.PaidDate.UTC()
	if r.PaidDate.IsZero() {
		paid = now
	}
	p.AmountPaid = r.AmountPaid
	p.PaidDate = &paid
	p.PaymentMethod = r.PaymentMethod
	p.ReferenceNumber = r.ReferenceNumber
	p.LateFee = r.LateFee
	p.Notes = r.Notes
	p.UpdatedAt = now
	p.Status = DeriveStatus(p.AmountPaid, p.AmountDue, p.DueDate, now)
	return nil
}

// DeriveStatus computes the payment status from amounts and dates.
// Only the date parts of dueDate and today are compared.
func DeriveStatus(amountPaid, amountDue decimal.Decimal, dueDate, today time.Time) RentPaymentStatus {
	overdue := DateOnly(dueDate).Before(DateOnly(today))
	switch {
	case !amountPaid.IsPositive():
		if overdue {
			return RentPaymentStatusLate
		}
		return RentPaymentStatusPending
	case amountPaid.LessThan(amountDue):
		if overdue {
			return RentPaymentStatusLate
		}
		return RentPaymentStatusPartial
	default:
		return RentPaymentStatusPaid
	}
}

// CanSendReceipt reports whether a receipt may be issued for the payment
func (p *RentPayment) CanSendReceipt() bool {
	return p.Status == RentPaymentStatusPaid || p.Status == RentPaymentStatusPartial
}

// MarkReceiptSent stamps the receipt delivery
func (p *RentPayment) MarkReceiptSent(now time.Time) {
	now = now.UTC()
	p.ReceiptSent = true
	p.ReceiptSentAt = &now
	p.UpdatedAt = now
}

// MarkLate flips the payment to Late
func (p *RentPayment) MarkLate(now time.Time) {
	p.Status = RentPaymentStatusLate
	p.UpdatedAt = now.UTC()
}

// Outstanding is amount due plus late fee minus amount paid, never below zero
func (p *RentPayment) Outstanding() decimal.Decimal {
	total := p.AmountDue
	if p.LateFee != nil {
		total = total.Add(*p.LateFee)
	}
	out := total.Sub(p.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// NewReceiptNumber returns RCPT-<first 8 of contract id, uppercased>-<UTC stamp>
func NewReceiptNumber(contractID string, now time.Time, grain ReceiptGrain) string {
	if grain == "" {
		grain = ReceiptGrainMinute
	}
	prefix := strings.ReplaceAll(contractID, "-", "")
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("RCPT-%s-%s", strings.ToUpper(prefix), now.UTC().Format(string(grain)))
}

// WithReceiptSuffix disambiguates a receipt number that collided with an existing one
func WithReceiptSuffix(receipt string, n int) string {
	if n <= 1 {
		return receipt
	}
	return fmt.Sprintf("%s-%d", receipt, n)
}
