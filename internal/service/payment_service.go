package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/cache"
	"github.com/gtemgoua/property-manager-app/internal/document"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/events"
	"github.com/gtemgoua/property-manager-app/internal/gateway"
	"github.com/gtemgoua/property-manager-app/internal/notifier"
	"github.com/gtemgoua/property-manager-app/internal/repository"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"go.uber.org/zap"
)

// maxReceiptAttempts bounds the suffixes tried when receipt numbers collide
const maxReceiptAttempts = 10

// PaymentServiceConfig holds the collaborators of the payment service.
// Nil optional collaborators fall back to no-op implementations.
type PaymentServiceConfig struct {
	PaymentRepo  repository.PaymentRepository
	ContractRepo repository.ContractRepository
	DocumentRepo repository.DocumentRepository
	Renderer     document.Renderer
	Notifier     notifier.Notifier
	Gateway      gateway.PaymentGateway
	Publisher    events.Publisher
	Dashboard    cache.DashboardCache
	Metrics      *telemetry.AppMetrics
}

// paymentService implements the PaymentService interface
type paymentService struct {
	paymentRepo  repository.PaymentRepository
	contractRepo repository.ContractRepository
	documentRepo repository.DocumentRepository
	renderer     document.Renderer
	notifier     notifier.Notifier
	gateway      gateway.PaymentGateway
	publisher    events.Publisher
	dashboard    cache.DashboardCache
	metrics      *telemetry.AppMetrics
	now          func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg *PaymentServiceConfig) PaymentService {
	s := &paymentService{
		paymentRepo:  cfg.PaymentRepo,
		contractRepo: cfg.ContractRepo,
		documentRepo: cfg.DocumentRepo,
		renderer:     cfg.Renderer,
		notifier:     cfg.Notifier,
		gateway:      cfg.Gateway,
		publisher:    cfg.Publisher,
		dashboard:    cfg.Dashboard,
		metrics:      cfg.Metrics,
		now:          time.Now,
	}
	if s.notifier == nil {
		s.notifier = notifier.NewLogNotifier()
	}
	if s.gateway == nil {
		s.gateway = gateway.DisabledGateway{}
	}
	if s.publisher == nil {
		s.publisher = events.NewNoopPublisher()
	}
	if s.dashboard == nil {
		s.dashboard = cache.NoopDashboardCache{}
	}
	if s.metrics == nil {
		s.metrics = telemetry.NoopMetrics()
	}
	return s
}

// CreatePayment creates a pending payment for a contract and due date
func (s *paymentService) CreatePayment(ctx context.Context, req *dto.CreateRentPaymentRequest) (*domain.PaymentDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.create")
	defer span.End()

	contract, err := s.contractRepo.GetByID(ctx, req.RentalContractID)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	currency, err := domain.ParseCurrency(req.Currency, contract.Currency)
	if err != nil {
		return nil, validationError(err)
	}
	now := s.now().UTC()
	payment, err := domain.NewRentPayment(contract.ID, req.DueDate.Time, req.AmountDue, currency, domain.ReceiptGrainMinute, now)
	if err != nil {
		return nil, validationError(err)
	}
	payment.Notes = req.Notes

	exists, err := s.paymentRepo.ExistsForDueDate(ctx, contract.ID, payment.DueDate)
	if err != nil {
		return nil, storeError("check duplicate payment", err)
	}
	if exists {
		return nil, ErrDuplicatePayment
	}

	if err := s.insertWithUniqueReceipt(ctx, payment); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	logger.InfoCtx(ctx, "Rent payment created",
		zap.String("payment_id", payment.ID),
		zap.String("contract_id", contract.ID),
		zap.String("receipt_number", payment.ReceiptNumber),
	)
	s.publisher.Publish(ctx, dto.NewPaymentEvent(dto.EventPaymentCreated, payment, logger.ActorFromContext(ctx), now))
	s.dashboard.Invalidate(ctx)

	return s.GetPayment(ctx, payment.ID)
}

// insertWithUniqueReceipt retries with a -N suffix while the receipt number collides.
// A due date collision is final: the store constraint decided a concurrent race.
func (s *paymentService) insertWithUniqueReceipt(ctx context.Context, payment *domain.RentPayment) error {
	base := payment.ReceiptNumber
	for attempt := 1; attempt <= maxReceiptAttempts; attempt++ {
		payment.ReceiptNumber = domain.WithReceiptSuffix(base, attempt)
		err := s.paymentRepo.Create(ctx, payment)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrDuplicateDueDate):
			return ErrDuplicatePayment
		case errors.Is(err, repository.ErrDuplicateReceipt):
			logger.DebugCtx(ctx, "Receipt number taken, retrying", zap.String("receipt_number", payment.ReceiptNumber))
			continue
		default:
			return storeError("create payment", err)
		}
	}
	return fmt.Errorf("create payment: no free receipt number after %d attempts for %s", maxReceiptAttempts, base)
}

// RecordPayment overwrites the recorded facts and recomputes the status
func (s *paymentService) RecordPayment(ctx context.Context, id string, req *dto.RecordRentPaymentRequest) (*domain.PaymentDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.record")
	defer span.End()
	telemetry.SetSpanAttributes(ctx, telemetry.PaymentIDAttr(id))

	recording, err := req.ToRecording()
	if err != nil {
		return nil, validationError(err)
	}
	payment, err := s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyRecording(ctx, payment, recording)
}

func (s *paymentService) applyRecording(ctx context.Context, payment *domain.RentPayment, recording domain.Recording) (*domain.PaymentDetail, error) {
	now := s.now().UTC()
	if err := payment.Record(recording, now); err != nil {
		return nil, validationError(err)
	}
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, storeError("update payment", err)
	}

	s.metrics.PaymentsRecorded.Inc(ctx,
		telemetry.PaymentStatusAttr(string(payment.Status)),
		telemetry.CurrencyAttr(payment.Currency.Code()),
	)
	logger.InfoCtx(ctx, "Rent payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("status", string(payment.Status)),
		zap.String("amount_paid", payment.AmountPaid.String()),
	)
	s.publisher.Publish(ctx, dto.NewPaymentEvent(dto.EventPaymentRecorded, payment, logger.ActorFromContext(ctx), now))
	s.dashboard.Invalidate(ctx)

	return s.GetPayment(ctx, payment.ID)
}

func (s *paymentService) getPayment(ctx context.Context, id string) (*domain.RentPayment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get payment", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// GetPayment retrieves a payment with its tenant and unit
func (s *paymentService) GetPayment(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	detail, err := s.paymentRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, storeError("get payment", err)
	}
	if detail == nil {
		return nil, ErrPaymentNotFound
	}
	return detail, nil
}

func (s *paymentService) GetUpcoming(ctx context.Context, from, to *time.Time) ([]*domain.PaymentDetail, error) {
	payments, err := s.paymentRepo.ListUpcoming(ctx, from, to)
	if err != nil {
		return nil, storeError("list upcoming payments", err)
	}
	return payments, nil
}

func (s *paymentService) GetByContract(ctx context.Context, contractID string) ([]*domain.PaymentDetail, error) {
	payments, err := s.paymentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, storeError("list contract payments", err)
	}
	return payments, nil
}

// GenerateReceipt renders a receipt and keeps a copy in the document log
func (s *paymentService) GenerateReceipt(ctx context.Context, id string) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.receipt")
	defer span.End()

	detail, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderReceipt(ctx, detail)
}

func (s *paymentService) renderReceipt(ctx context.Context, detail *domain.PaymentDetail) ([]byte, error) {
	pdf, err := s.renderer.RenderReceipt(ctx, detail)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, storeError("render receipt", err)
	}
	doc := domain.NewReceiptLog(detail, pdf, s.now())
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, storeError("store receipt", err)
	}
	return pdf, nil
}

// SendReceipt emails the receipt and marks it sent once the mail server accepted it
func (s *paymentService) SendReceipt(ctx context.Context, id string, req *dto.SendReceiptRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.send_receipt")
	defer span.End()

	detail, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if !detail.CanSendReceipt() {
		return ErrReceiptUnpaid
	}

	msg := &notifier.Message{
		To:       req.RecipientEmail,
		ToName:   req.RecipientName,
		Subject:  "Rent receipt " + detail.ReceiptNumber,
		HTMLBody: receiptEmailBody(detail, req.RecipientName),
	}
	if req.AttachPDF {
		pdf, err := s.renderReceipt(ctx, detail)
		if err != nil {
			return err
		}
		msg.Attachment = pdf
		msg.AttachmentName = detail.ReceiptNumber + ".pdf"
		msg.AttachmentContentType = domain.ContentTypePDF
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		telemetry.SetSpanError(ctx, err)
		return storeError("send receipt", err)
	}

	payment := detail.RentPayment
	now := s.now()
	if err := s.paymentRepo.MarkReceiptSent(ctx, payment.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return storeError("mark receipt sent", err)
	}

	s.metrics.ReceiptsSent.Inc(ctx, telemetry.CurrencyAttr(payment.Currency.Code()))
	logger.InfoCtx(ctx, "Receipt sent",
		zap.String("payment_id", payment.ID),
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.Bool("attached", req.AttachPDF),
	)
	s.publisher.Publish(ctx, &dto.ReceiptSentEvent{
		EventType:      dto.EventReceiptSent,
		PaymentID:      payment.ID,
		ReceiptNumber:  payment.ReceiptNumber,
		RecipientEmail: req.RecipientEmail,
		Attached:       req.AttachPDF,
		Timestamp:      now.UTC(),
	})
	return nil
}

const longDate = "January 02, 2006"

func receiptEmailBody(p *domain.PaymentDetail, recipientName string) string {
	name := recipientName
	if name == "" {
		name = p.TenantFirstName
	}
	paid := ""
	if p.PaidDate != nil {
		paid = p.PaidDate.Format(longDate)
	}
	return fmt.Sprintf("<p>Dear %s,</p>"+
		"<p>Please find your rent receipt attached. Thank you for your payment.</p>"+
		"<p><strong>Amount Paid:</strong> %s<br/>"+
		"<strong>Due Date:</strong> %s<br/>"+
		"<strong>Paid Date:</strong> %s</p>",
		html.EscapeString(name),
		html.EscapeString(document.FormatAmount(p.AmountPaid, p.Currency)),
		p.DueDate.Format(longDate),
		paid,
	)
}

// CreatePaymentIntent starts a card payment for the outstanding balance
func (s *paymentService) CreatePaymentIntent(ctx context.Context, id string) (*dto.PaymentIntentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.create_intent")
	defer span.End()

	detail, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	outstanding := detail.Outstanding()
	if !outstanding.IsPositive() {
		return nil, ErrNothingOutstanding
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, &gateway.PaymentIntentRequest{
		PaymentID:     detail.ID,
		Amount:        outstanding,
		Currency:      detail.Currency,
		Description:   fmt.Sprintf("Rent %s (%s)", detail.ReceiptNumber, detail.RentalUnitName),
		Metadata:      map[string]string{"receipt_number": detail.ReceiptNumber},
		CustomerEmail: detail.TenantEmail,
	})
	if err != nil {
		return nil, gatewayError("create payment intent", err)
	}

	logger.InfoCtx(ctx, "Payment intent created",
		zap.String("payment_id", detail.ID),
		zap.String("payment_intent_id", intent.PaymentIntentID),
		zap.Int64("amount", intent.Amount),
	)
	return &dto.PaymentIntentResponse{
		PaymentID:       detail.ID,
		PaymentIntentID: intent.PaymentIntentID,
		ClientSecret:    intent.ClientSecret,
		Amount:          intent.Amount,
		Currency:        detail.Currency.Code(),
		Status:          intent.Status,
	}, nil
}

// ConfirmPaymentIntent adds a succeeded intent's amount to the payment.
// Confirming the same intent twice records it once.
func (s *paymentService) ConfirmPaymentIntent(ctx context.Context, id, intentID string) (*domain.PaymentDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.confirm_intent")
	defer span.End()

	payment, err := s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.ConfirmPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, gatewayError("confirm payment intent", err)
	}
	if intent.Metadata["payment_id"] != payment.ID || intent.Currency != payment.Currency {
		return nil, ErrIntentMismatch
	}
	if !intent.Succeeded {
		return nil, ErrIntentNotSucceeded
	}
	if payment.PaymentMethod == domain.PaymentMethodCard && payment.ReferenceNumber == intent.PaymentIntentID {
		return s.GetPayment(ctx, payment.ID)
	}

	return s.applyRecording(ctx, payment, domain.Recording{
		AmountPaid:      payment.AmountPaid.Add(intent.MajorAmount()),
		PaidDate:        s.now(),
		PaymentMethod:   domain.PaymentMethodCard,
		ReferenceNumber: intent.PaymentIntentID,
		LateFee:         payment.LateFee,
		Notes:           payment.Notes,
	})
}

func gatewayError(op string, err error) error {
	switch {
	case errors.Is(err, gateway.ErrGatewayDisabled):
		return ErrCardPaymentsDisabled
	case errors.Is(err, gateway.ErrInvalidAmount):
		return ErrNothingOutstanding
	}
	return storeError(op, err)
}
