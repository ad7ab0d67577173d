package dto

import (
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
)

// TopicPayments carries every payment lifecycle event
const TopicPayments = "property-manager.payments"

// Event types
const (
	EventPaymentCreated  = "payment.created"
	EventPaymentRecorded = "payment.recorded"
	EventReceiptSent     = "receipt.sent"
	EventAlertRaised     = "alert.raised"
)

// PaymentEvent is published when a payment is created or recorded
type PaymentEvent struct {
	EventType        string                   `json:"event_type"`
	PaymentID        string                   `json:"payment_id"`
	RentalContractID string                   `json:"rental_contract_id"`
	ReceiptNumber    string                   `json:"receipt_number"`
	DueDate          string                   `json:"due_date"`
	AmountDue        string                   `json:"amount_due"`
	AmountPaid       string                   `json:"amount_paid"`
	Currency         string                   `json:"currency"`
	Status           domain.RentPaymentStatus `json:"status"`
	ActorID          string                   `json:"actor_id,omitempty"`
	Timestamp        time.Time                `json:"timestamp"`
}

// NewPaymentEvent builds a payment event of the given type
func NewPaymentEvent(eventType string, p *domain.RentPayment, actorID string, now time.Time) *PaymentEvent {
	return &PaymentEvent{
		EventType:        eventType,
		PaymentID:        p.ID,
		RentalContractID: p.RentalContractID,
		ReceiptNumber:    p.ReceiptNumber,
		DueDate:          p.DueDate.Format(dateLayout),
		AmountDue:        p.AmountDue.String(),
		AmountPaid:       p.AmountPaid.String(),
		Currency:         p.Currency.Code(),
		Status:           p.Status,
		ActorID:          actorID,
		Timestamp:        now.UTC(),
	}
}

// Type returns the event type
func (e *PaymentEvent) Type() string {
	return e.EventType
}

// Key returns the Kafka message key for partitioning
func (e *PaymentEvent) Key() string {
	return e.PaymentID
}

// ReceiptSentEvent is published after a receipt email was accepted by the mail server
type ReceiptSentEvent struct {
	EventType      string    `json:"event_type"`
	PaymentID      string    `json:"payment_id"`
	ReceiptNumber  string    `json:"receipt_number"`
	RecipientEmail string    `json:"recipient_email"`
	Attached       bool      `json:"attached"`
	Timestamp      time.Time `json:"timestamp"`
}

// Type returns the event type
func (e *ReceiptSentEvent) Type() string {
	return e.EventType
}

// Key returns the Kafka message key for partitioning
func (e *ReceiptSentEvent) Key() string {
	return e.PaymentID
}

// AlertRaisedEvent is published for every overdue alert a scan creates
type AlertRaisedEvent struct {
	EventType string    `json:"event_type"`
	AlertID   string    `json:"alert_id"`
	PaymentID string    `json:"payment_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type
func (e *AlertRaisedEvent) Type() string {
	return e.EventType
}

// Key returns the Kafka message key for partitioning
func (e *AlertRaisedEvent) Key() string {
	return e.PaymentID
}
