package document

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/shopspring/decimal"
)

const fontFamily = "Helvetica"

// PDFRenderer renders receipts and payment reports with fpdf core fonts
type PDFRenderer struct {
	company string
}

// NewPDFRenderer creates a PDFRenderer
func NewPDFRenderer(company string) *PDFRenderer {
	if company == "" {
		company = "Property Manager"
	}
	return &PDFRenderer{company: company}
}

type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *PDFRenderer) newDoc(title string) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator(r.company, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	d := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFont(fontFamily, "", 9)
	d.line(r.company, 5)
	return d
}

// core fonts are cp1252; the narrow no-break space has no glyph there
func (d *pdfDoc) text(s string) string {
	return d.tr(strings.ReplaceAll(s, narrowNBSP, " "))
}

func (d *pdfDoc) heading(s string, size float64) {
	d.pdf.SetFont(fontFamily, "B", size)
	d.pdf.CellFormat(0, size*0.6, d.text(s), "", 1, "L", false, 0, "")
	d.pdf.SetFont(fontFamily, "", 11)
}

func (d *pdfDoc) line(s string, h float64) {
	d.pdf.MultiCell(0, h, d.text(s), "", "L", false)
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderReceipt renders a one-page receipt
func (r *PDFRenderer) RenderReceipt(ctx context.Context, p *domain.PaymentDetail) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := r.newDoc("Rent receipt " + p.ReceiptNumber)
	d.heading("Rent Payment Receipt", 20)
	d.pdf.Ln(2)

	rows := []string{
		"Receipt #: " + p.ReceiptNumber,
		"Tenant: " + p.TenantFullName(),
		"Unit: " + p.RentalUnitName,
		"Due Date: " + p.DueDate.Format(longDate),
		"Paid Date: " + formatOptionalDate(p.PaidDate, longDate, "Pending"),
		"Amount Due: " + FormatAmount(p.AmountDue, p.Currency),
		"Amount Paid: " + FormatAmount(p.AmountPaid, p.Currency),
	}
	if p.LateFee != nil {
		rows = append(rows, "Late Fee: "+FormatAmount(*p.LateFee, p.Currency))
	}
	rows = append(rows,
		"Amount in words: "+AmountInWords(p.AmountPaid, p.Currency),
		"Payment Method: "+string(p.PaymentMethod),
		"Status: "+string(p.Status),
	)
	for _, row := range rows {
		d.line(row, 7)
	}
	if strings.TrimSpace(p.Notes) != "" {
		d.pdf.Ln(4)
		d.line("Notes: "+p.Notes, 6)
	}
	return d.bytes()
}

type currencyTotals struct {
	due, paid decimal.Decimal
}

// RenderPaymentsReport renders a per-payment listing followed by totals per currency
func (r *PDFRenderer) RenderPaymentsReport(ctx context.Context, payments []*domain.PaymentDetail, from, to time.Time) ([]byte, error) {
	d := r.newDoc("Rent Payments Report")
	d.heading("Rent Payments Report", 20)
	d.line(fmt.Sprintf("Period: %s - %s", from.Format(longDate), to.Format(longDate)), 7)
	d.pdf.Ln(3)

	totals := make(map[domain.Currency]*currencyTotals)
	for _, p := range payments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.pdf.SetFont(fontFamily, "B", 10)
		d.line("Receipt: "+p.ReceiptNumber, 5)
		d.pdf.SetFont(fontFamily, "", 10)
		d.line(fmt.Sprintf("Tenant: %s    Unit: %s", p.TenantFullName(), p.RentalUnitName), 5)
		d.line(fmt.Sprintf("Due: %s    Paid: %s    Status: %s",
			p.DueDate.Format(shortDate), formatOptionalDate(p.PaidDate, shortDate, "-"), p.Status), 5)
		d.line(fmt.Sprintf("Amount Due: %s    Amount Paid: %s",
			FormatAmount(p.AmountDue, p.Currency), FormatAmount(p.AmountPaid, p.Currency)), 5)
		d.pdf.Ln(2)

		t, ok := totals[p.Currency]
		if !ok {
			t = &currencyTotals{}
			totals[p.Currency] = t
		}
		t.due = t.due.Add(p.AmountDue)
		t.paid = t.paid.Add(p.AmountPaid)
	}

	d.pdf.Ln(4)
	d.heading("Totals:", 12)
	currencies := make([]domain.Currency, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	for _, c := range currencies {
		t := totals[c]
		d.line(fmt.Sprintf("%s - Total Due: %s", c.Code(), FormatAmount(t.due, c)), 6)
		d.line(fmt.Sprintf("%s - Collected: %s", c.Code(), FormatAmount(t.paid, c)), 6)
		d.line(fmt.Sprintf("%s - Outstanding: %s", c.Code(), FormatAmount(t.due.Sub(t.paid), c)), 6)
	}
	if len(payments) == 0 {
		d.line("No payments in this period.", 6)
	}
	return d.bytes()
}
