package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Content types of stored documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DocumentLog is a stored copy of a generated document
type DocumentLog struct {
	ID            string          `json:"id"`
	DocumentType  DocumentType    `json:"document_type"`
	FileName      string          `json:"file_name"`
	ContentType   string          `json:"content_type"`
	Content       []byte          `json:"-"`
	RentPaymentID *string         `json:"rent_payment_id,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewReceiptLog records a rendered receipt for a payment
func NewReceiptLog(d *PaymentDetail, content []byte, now time.Time) *DocumentLog {
	meta, _ := json.Marshal(map[string]string{"tenant": d.TenantFullName()})
	paymentID := d.ID
	return &DocumentLog{
		ID:            uuid.New().String(),
		DocumentType:  DocumentTypeReceipt,
		FileName:      d.ReceiptNumber + ".pdf",
		ContentType:   ContentTypePDF,
		Content:       content,
		RentPaymentID: &paymentID,
		Metadata:      meta,
		CreatedAt:     now.UTC(),
	}
}

// NewReportLog records a rendered payments report
func NewReportLog(fileName, contentType string, content []byte, from, to time.Time, now time.Time) *DocumentLog {
	meta, _ := json.Marshal(map[string]string{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	})
	return &DocumentLog{
		ID:           uuid.New().String(),
		DocumentType: DocumentTypePaymentsReport,
		FileName:     fileName,
		ContentType:  contentType,
		Content:      content,
		Metadata:     meta,
		CreatedAt:    now.UTC(),
	}
}
