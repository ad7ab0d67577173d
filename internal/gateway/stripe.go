package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// New returns a Stripe gateway, or a disabled one when no secret key is configured
func New(cfg *config.StripeConfig) PaymentGateway {
	if cfg == nil || cfg.SecretKey == "" {
		return DisabledGateway{}
	}
	return NewStripeGateway(stripe.NewClient(cfg.SecretKey))
}

// StripeGateway implements PaymentGateway with the Stripe API
type StripeGateway struct {
	client *stripe.Client
}

// NewStripeGateway wraps a configured Stripe client
func NewStripeGateway(client *stripe.Client) *StripeGateway {
	return &StripeGateway{client: client}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error) {
	amount := ToMinorUnits(req.Amount, req.Currency)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(req.Currency.Code())),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("payment_id", req.PaymentID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		logger.ErrorCtx(ctx, "Stripe payment intent creation failed",
			zap.String("payment_id", req.PaymentID), zap.Error(err))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return toResponse(pi), nil
}

func (g *StripeGateway) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntentResponse, error) {
	pi, err := g.client.V1PaymentIntents.Retrieve(ctx, paymentIntentID, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", paymentIntentID, err)
	}
	return toResponse(pi), nil
}

func toResponse(pi *stripe.PaymentIntent) *PaymentIntentResponse {
	currency := domain.Currency(strings.ToUpper(string(pi.Currency)))
	return &PaymentIntentResponse{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Status:          string(pi.Status),
		Amount:          pi.Amount,
		Currency:        currency,
		Succeeded:       pi.Status == stripe.PaymentIntentStatusSucceeded,
		Metadata:        pi.Metadata,
	}
}
