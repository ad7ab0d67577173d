package document

import (
	"context"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
)

// Renderer turns payment data into document bytes. Rendering failures are
// returned as errors, never as partial output.
type Renderer interface {
	// RenderReceipt renders a PDF receipt for one payment
	RenderReceipt(ctx context.Context, payment *domain.PaymentDetail) ([]byte, error)
	// RenderPaymentsReport renders a PDF listing of payments with totals by currency
	RenderPaymentsReport(ctx context.Context, payments []*domain.PaymentDetail, from, to time.Time) ([]byte, error)
	// RenderPaymentsSpreadsheet renders an xlsx workbook of payments
	RenderPaymentsSpreadsheet(ctx context.Context, payments []*domain.PaymentDetail) ([]byte, error)
}

// Generator implements Renderer with fpdf and excelize
type Generator struct {
	pdf  *PDFRenderer
	xlsx *SpreadsheetRenderer
}

// NewGenerator creates a Generator; company is printed on PDF headers
func NewGenerator(company string) *Generator {
	return &Generator{
		pdf:  NewPDFRenderer(company),
		xlsx: NewSpreadsheetRenderer(),
	}
}

func (g *Generator) RenderReceipt(ctx context.Context, payment *domain.PaymentDetail) ([]byte, error) {
	return g.pdf.RenderReceipt(ctx, payment)
}

func (g *Generator) RenderPaymentsReport(ctx context.Context, payments []*domain.PaymentDetail, from, to time.Time) ([]byte, error) {
	return g.pdf.RenderPaymentsReport(ctx, payments, from, to)
}

func (g *Generator) RenderPaymentsSpreadsheet(ctx context.Context, payments []*domain.PaymentDetail) ([]byte, error) {
	return g.xlsx.RenderPaymentsSpreadsheet(ctx, payments)
}

const (
	longDate  = "January 02, 2006"
	shortDate = "01/02/2006"
)

func formatOptionalDate(t *time.Time, layout, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(layout)
}
