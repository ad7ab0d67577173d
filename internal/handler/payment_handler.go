package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/service"
	"github.com/gtemgoua/property-manager-app/pkg/middleware"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PaymentHandler handles rent payment HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create handles POST /api/rentpayments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreateRentPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create rent payment")
		return
	}

	middleware.SetAuditResourceID(c, result.ID)
	c.JSON(http.StatusCreated, response.Success(result))
}

// Record applies money received to a payment
// POST /api/rentpayments/:id/record
func (h *PaymentHandler) Record(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrPaymentNotFound)
	if !ok {
		return
	}

	var req dto.RecordRentPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to record rent payment")
		return
	}

	middleware.SetAuditMetadata(c, map[string]interface{}{
		"status":      string(result.Status),
		"amount_paid": result.AmountPaid.String(),
	})
	c.JSON(http.StatusOK, response.Success(result))
}

// GetByID handles GET /api/rentpayments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrPaymentNotFound)
	if !ok {
		return
	}

	result, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get rent payment")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Upcoming lists payments due in the optional range
// GET /api/rentpayments?from&to
func (h *PaymentHandler) Upcoming(c *gin.Context) {
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	result, err := h.paymentService.GetUpcoming(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "Failed to list rent payments")
		return
	}

	c.JSON(http.StatusOK, response.ListInRange(result, len(result), c.Query("from"), c.Query("to")))
}

// ByContract handles GET /api/rentpayments/contract/:contractId
func (h *PaymentHandler) ByContract(c *gin.Context) {
	contractID, ok := pathID(c, "contractId", service.ErrContractNotFound)
	if !ok {
		return
	}

	result, err := h.paymentService.GetByContract(c.Request.Context(), contractID)
	if err != nil {
		respondError(c, err, "Failed to list rent payments")
		return
	}

	c.JSON(http.StatusOK, response.List(result, len(result)))
}

// Receipt renders the receipt PDF
// GET /api/rentpayments/:id/receipt
func (h *PaymentHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrPaymentNotFound)
	if !ok {
		return
	}

	content, err := h.paymentService.GenerateReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to generate receipt")
		return
	}

	attachment(c, fmt.Sprintf("receipt-%s.pdf", id), contentTypePDF, content)
}

// SendReceipt emails a receipt and answers 202
// POST /api/rentpayments/:id/send-receipt
func (h *PaymentHandler) SendReceipt(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrPaymentNotFound)
	if !ok {
		return
	}

	var req dto.SendReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.paymentService.SendReceipt(c.Request.Context(), id, &req); err != nil {
		respondError(c, err, "Failed to send receipt")
		return
	}

	c.Status(http.StatusAccepted)
}

// CreateIntent starts a card payment for the outstanding balance
// POST /api/rentpayments/:id/payment-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrPaymentNotFound)
	if !ok {
		return
	}

	result, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to create payment intent")
		return
	}

	middleware.SetAuditMetadata(c, map[string]interface{}{"payment_intent_id": result.PaymentIntentID})
	c.JSON(http.StatusCreated, response.Success(result))
}

// ConfirmIntent records a succeeded card payment
// POST /api/rentpayments/:id/payment-intent/:intentId/confirm
func (h *PaymentHandler) ConfirmIntent(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrPaymentNotFound)
	if !ok {
		return
	}

	result, err := h.paymentService.ConfirmPaymentIntent(c.Request.Context(), id, c.Param("intentId"))
	if err != nil {
		respondError(c, err, "Failed to confirm payment intent")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

func attachment(c *gin.Context, name, contentType string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, content)
}
