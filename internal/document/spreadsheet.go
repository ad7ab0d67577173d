package document

import (
	"context"
	"fmt"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/xuri/excelize/v2"
)

const paymentsSheet = "Payments"

var paymentColumns = []string{
	"Receipt", "Tenant", "Unit", "Due", "Paid", "Amount Due", "Amount Paid", "Late Fee", "Status", "Currency",
}

// SpreadsheetRenderer renders payment exports with excelize
type SpreadsheetRenderer struct{}

// NewSpreadsheetRenderer creates a SpreadsheetRenderer
func NewSpreadsheetRenderer() *SpreadsheetRenderer {
	return &SpreadsheetRenderer{}
}

// RenderPaymentsSpreadsheet writes one row per payment with currency-aware number formats
func (r *SpreadsheetRenderer) RenderPaymentsSpreadsheet(ctx context.Context, payments []*domain.PaymentDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), paymentsSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, title := range paymentColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(paymentsSheet, cell, title); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(paymentsSheet, "A1", "J1", headerStyle); err != nil {
		return nil, err
	}

	styles := make(map[domain.Currency]int)
	amountStyle := func(c domain.Currency) (int, error) {
		if id, ok := styles[c]; ok {
			return id, nil
		}
		format := ExcelNumberFormat(c)
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
		if err != nil {
			return 0, err
		}
		styles[c] = id
		return id, nil
	}

	for i, p := range payments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := i + 2
		style, err := amountStyle(p.Currency)
		if err != nil {
			return nil, fmt.Errorf("amount style: %w", err)
		}

		var lateFee interface{}
		if p.LateFee != nil {
			lateFee = p.LateFee.InexactFloat64()
		}
		values := []interface{}{
			p.ReceiptNumber,
			p.TenantFullName(),
			p.RentalUnitName,
			p.DueDate.Format(shortDate),
			formatOptionalDate(p.PaidDate, shortDate, ""),
			p.AmountDue.InexactFloat64(),
			p.AmountPaid.InexactFloat64(),
			lateFee,
			string(p.Status),
			p.Currency.Code(),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(paymentsSheet, start, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}

		from, _ := excelize.CoordinatesToCellName(6, row)
		to, _ := excelize.CoordinatesToCellName(7, row)
		if p.LateFee != nil {
			to, _ = excelize.CoordinatesToCellName(8, row)
		}
		if err := f.SetCellStyle(paymentsSheet, from, to, style); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(paymentsSheet, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(paymentsSheet, "B", "J", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
