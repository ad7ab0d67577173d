package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractID = "3f2a9c1e-7b4d-4e21-9a55-0c1d2e3f4a5b"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)
	due := decimal.NewFromInt(1800)

	tests := []struct {
		name     string
		paid     decimal.Decimal
		dueDate  time.Time
		expected RentPaymentStatus
	}{
		{"nothing paid, past due", decimal.Zero, day(2024, time.March, 14), RentPaymentStatusLate},
		{"nothing paid, due today", decimal.Zero, day(2024, time.March, 15), RentPaymentStatusPending},
		{"nothing paid, future", decimal.Zero, day(2024, time.April, 1), RentPaymentStatusPending},
		{"partial, past due", decimal.NewFromInt(900), day(2024, time.March, 1), RentPaymentStatusLate},
		{"partial, due today", decimal.NewFromInt(900), day(2024, time.March, 15), RentPaymentStatusPartial},
		{"partial, future", decimal.NewFromInt(1), day(2024, time.May, 1), RentPaymentStatusPartial},
		{"exact, past due", decimal.NewFromInt(1800), day(2023, time.January, 1), RentPaymentStatusPaid},
		{"overpaid, future", decimal.NewFromInt(2000), day(2024, time.May, 1), RentPaymentStatusPaid},
		{"negative treated as unpaid", decimal.NewFromInt(-5), day(2024, time.April, 1), RentPaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveStatus(tt.paid, due, tt.dueDate, today))
		})
	}
}

func TestDeriveStatus_ComparesDatesOnly(t *testing.T) {
	due := decimal.NewFromInt(100)
	dueDate := time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, time.March, 15, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, RentPaymentStatusPending, DeriveStatus(decimal.Zero, due, dueDate, today))
	assert.Equal(t, RentPaymentStatusPending, DeriveStatus(decimal.Zero, due, today, dueDate))
}

func TestNewRentPayment(t *testing.T) {
	now := time.Date(2024, time.March, 10, 9, 7, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		p, err := NewRentPayment(contractID, day(2024, time.April, 5), decimal.NewFromInt(1800), CurrencyUSD, ReceiptGrainMinute, now)
		require.NoError(t, err)

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, RentPaymentStatusPending, p.Status)
		assert.True(t, p.AmountPaid.IsZero())
		require.NotNil(t, p.LateFee)
		assert.True(t, p.LateFee.IsZero())
		assert.Equal(t, PaymentMethodUnknown, p.PaymentMethod)
		assert.Equal(t, "RCPT-3F2A9C1E-202403100907", p.ReceiptNumber)
		assert.False(t, p.ReceiptSent)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewRentPayment("", day(2024, time.April, 5), decimal.NewFromInt(1), CurrencyUSD, ReceiptGrainDay, now)
		assert.ErrorIs(t, err, ErrRequiredField)

		_, err = NewRentPayment(contractID, time.Time{}, decimal.NewFromInt(1), CurrencyUSD, ReceiptGrainDay, now)
		assert.ErrorIs(t, err, ErrRequiredField)

		_, err = NewRentPayment(contractID, day(2024, time.April, 5), decimal.Zero, CurrencyUSD, ReceiptGrainDay, now)
		assert.ErrorIs(t, err, ErrNonPositiveRent)

		_, err = NewRentPayment(contractID, day(2024, time.April, 5), decimal.NewFromInt(1), Currency("GBP"), ReceiptGrainDay, now)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestNewReceiptNumber(t *testing.T) {
	now := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.FixedZone("WAT", 3600))

	assert.Equal(t, "RCPT-3F2A9C1E-202412312259", NewReceiptNumber(contractID, now, ReceiptGrainMinute))
	assert.Equal(t, "RCPT-3F2A9C1E-20241231", NewReceiptNumber(contractID, now, ReceiptGrainDay))
	assert.Equal(t, "RCPT-3F2A9C1E-202412312259", NewReceiptNumber(contractID, now, ""))
	assert.Equal(t, "RCPT-AB-20241231", NewReceiptNumber("ab", now, ReceiptGrainDay))

	assert.Equal(t, "RCPT-X", WithReceiptSuffix("RCPT-X", 1))
	assert.Equal(t, "RCPT-X-2", WithReceiptSuffix("RCPT-X", 2))
}

func TestRentPayment_Record(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	newPayment := func(due time.Time) *RentPayment {
		p, err := NewRentPayment(contractID, due, decimal.NewFromInt(1800), CurrencyXAF, ReceiptGrainMinute, now)
		require.NoError(t, err)
		return p
	}

	t.Run("full payment", func(t *testing.T) {
		p := newPayment(day(2024, time.March, 5))
		paidAt := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
		fee := decimal.NewFromInt(50)

		err := p.Record(Recording{
			AmountPaid:      decimal.NewFromInt(1800),
			PaidDate:        paidAt,
			PaymentMethod:   PaymentMethodMobileMoney,
			ReferenceNumber: "MM-1",
			LateFee:         &fee,
			Notes:           "paid at office",
		}, now)
		require.NoError(t, err)

		assert.Equal(t, RentPaymentStatusPaid, p.Status)
		require.NotNil(t, p.PaidDate)
		assert.Equal(t, paidAt, *p.PaidDate)
		assert.Equal(t, "MM-1", p.ReferenceNumber)
		assert.True(t, p.LateFee.Equal(fee))
		assert.Equal(t, now, p.UpdatedAt)
	})

	t.Run("partial before due", func(t *testing.T) {
		p := newPayment(day(2024, time.April, 5))
		require.NoError(t, p.Record(Recording{AmountPaid: decimal.NewFromInt(600)}, now))
		assert.Equal(t, RentPaymentStatusPartial, p.Status)
		assert.Equal(t, PaymentMethodUnknown, p.PaymentMethod)
		assert.Equal(t, now, *p.PaidDate)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		p := newPayment(day(2024, time.April, 5))
		fee := decimal.NewFromInt(-1)
		assert.ErrorIs(t, p.Record(Recording{AmountPaid: decimal.NewFromInt(-1)}, now), ErrNegativeAmount)
		assert.ErrorIs(t, p.Record(Recording{AmountPaid: decimal.NewFromInt(1), LateFee: &fee}, now), ErrNegativeAmount)
		assert.ErrorIs(t, p.Record(Recording{AmountPaid: decimal.NewFromInt(1), PaymentMethod: "Barter"}, now), ErrInvalidValue)
		assert.Equal(t, RentPaymentStatusPending, p.Status)
	})
}

func TestRentPayment_Receipt(t *testing.T) {
	p := &RentPayment{Status: RentPaymentStatusPending}
	for status, ok := range map[RentPaymentStatus]bool{
		RentPaymentStatusPending: false,
		RentPaymentStatusLate:    false,
		RentPaymentStatusWaived:  false,
		RentPaymentStatusPartial: true,
		RentPaymentStatusPaid:    true,
	} {
		p.Status = status
		assert.Equal(t, ok, p.CanSendReceipt(), status)
	}

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	p.MarkReceiptSent(now)
	assert.True(t, p.ReceiptSent)
	require.NotNil(t, p.ReceiptSentAt)
	assert.Equal(t, now, *p.ReceiptSentAt)
}

func TestRentPayment_Outstanding(t *testing.T) {
	fee := decimal.NewFromInt(100)
	p := &RentPayment{AmountDue: decimal.NewFromInt(1800), AmountPaid: decimal.NewFromInt(500), LateFee: &fee}
	assert.True(t, p.Outstanding().Equal(decimal.NewFromInt(1400)))

	p.LateFee = nil
	p.AmountPaid = decimal.NewFromInt(2000)
	assert.True(t, p.Outstanding().IsZero())
}
