package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultOverdueDays is how far past due a payment must be before it raises an alert
const DefaultOverdueDays = 3

// PaymentAlert is an open or acknowledged overdue notice
type PaymentAlert struct {
	ID             string    `json:"id"`
	RentPaymentID  string    `json:"rent_payment_id"`
	Message        string    `json:"message"`
	IsAcknowledged bool      `json:"is_acknowledged"`
	AlertDate      time.Time `json:"alert_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewOverdueAlert builds the alert raised for an overdue payment
func NewOverdueAlert(p *OverduePayment, now time.Time) *PaymentAlert {
	now = now.UTC()
	return &PaymentAlert{
		ID:            uuid.New().String(),
		RentPaymentID: p.PaymentID,
		Message:       OverdueMessage(p.ReceiptNumber, p.TenantFirstName, p.TenantLastName),
		AlertDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// OverdueMessage is the operator-facing alert text
func OverdueMessage(receipt, firstName, lastName string) string {
	return fmt.Sprintf("Payment %s for tenant %s %s is overdue.", receipt, firstName, lastName)
}

// OverdueThreshold is the latest due date that counts as overdue on today
func OverdueThreshold(today time.Time, overdueDays int) time.Time {
	return DateOnly(today).AddDate(0, 0, -overdueDays)
}

// Acknowledge closes the alert
func (a *PaymentAlert) Acknowledge(now time.Time) {
	a.IsAcknowledged = true
	a.UpdatedAt = now.UTC()
}
