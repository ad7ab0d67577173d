package gateway

import (
	"context"
	"errors"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayDisabled is returned when no card processor is configured
	ErrGatewayDisabled = errors.New("card payments are not configured")
	// ErrInvalidAmount is returned for amounts that round to zero minor units
	ErrInvalidAmount = errors.New("amount must be positive")
)

// PaymentGateway defines the interface for card payment processing
type PaymentGateway interface {
	// CreatePaymentIntent creates a PaymentIntent and returns its client secret
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error)

	// ConfirmPaymentIntent fetches a PaymentIntent after client-side completion
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntentResponse, error)

	// Name returns the gateway name
	Name() string
}

// PaymentIntentRequest represents a request to create a PaymentIntent
type PaymentIntentRequest struct {
	PaymentID     string
	Amount        decimal.Decimal
	Currency      domain.Currency
	Description   string
	Metadata      map[string]string
	CustomerEmail string
}

// PaymentIntentResponse represents a PaymentIntent
type PaymentIntentResponse struct {
	PaymentIntentID string
	ClientSecret    string
	Status          string
	// Amount is in minor units of Currency
	Amount    int64
	Currency  domain.Currency
	Succeeded bool
	Metadata  map[string]string
}

// MajorAmount converts the intent amount back to a decimal in major units
func (r *PaymentIntentResponse) MajorAmount() decimal.Decimal {
	return FromMinorUnits(r.Amount, r.Currency)
}

// ToMinorUnits converts a decimal amount to the processor's integer unit.
// XAF has no minor unit; USD and EUR are charged in cents.
func ToMinorUnits(amount decimal.Decimal, currency domain.Currency) int64 {
	if currency.ZeroDecimal() {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits
func FromMinorUnits(amount int64, currency domain.Currency) decimal.Decimal {
	if currency.ZeroDecimal() {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -2)
}

// DisabledGateway rejects every call
type DisabledGateway struct{}

func (DisabledGateway) CreatePaymentIntent(context.Context, *PaymentIntentRequest) (*PaymentIntentResponse, error) {
	return nil, ErrGatewayDisabled
}

func (DisabledGateway) ConfirmPaymentIntent(context.Context, string) (*PaymentIntentResponse, error) {
	return nil, ErrGatewayDisabled
}

func (DisabledGateway) Name() string {
	return "disabled"
}
