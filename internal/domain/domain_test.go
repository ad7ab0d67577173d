package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("", CurrencyEUR)
	require.NoError(t, err)
	assert.Equal(t, CurrencyEUR, c)

	c, err = ParseCurrency(" usd ", CurrencyXAF)
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, c)

	_, err = ParseCurrency("GBP", CurrencyXAF)
	assert.ErrorIs(t, err, ErrInvalidValue)

	assert.Equal(t, "FCFA ", CurrencyXAF.Symbol())
	assert.Equal(t, "$", CurrencyUSD.Symbol())
	assert.Equal(t, "€", CurrencyEUR.Symbol())
	assert.True(t, CurrencyXAF.ZeroDecimal())
	assert.False(t, CurrencyUSD.ZeroDecimal())
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodUnknown, m)

	m, err = ParsePaymentMethod("BankTransfer")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodBankTransfer, m)

	_, err = ParsePaymentMethod("Barter")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestTenant_NormalizeAndValidate(t *testing.T) {
	tn := &Tenant{FirstName: "  Ada ", LastName: " Lovelace", Email: " ADA@Example.COM "}
	tn.Normalize()

	assert.Equal(t, "Ada", tn.FirstName)
	assert.Equal(t, "ada@example.com", tn.Email)
	assert.Equal(t, "Ada Lovelace", tn.FullName())
	assert.NoError(t, tn.Validate())

	tn.Email = "nope"
	assert.ErrorIs(t, tn.Validate(), ErrRequiredField)
}

func TestRentalUnit_Validate(t *testing.T) {
	u := &RentalUnit{Name: " Apt 1 "}
	require.NoError(t, u.Validate())
	assert.Equal(t, "Apt 1", u.Name)
	assert.Equal(t, RentalUnitStatusAvailable, u.Status)

	u.Status = "Demolished"
	assert.ErrorIs(t, u.Validate(), ErrInvalidValue)

	assert.ErrorIs(t, (&RentalUnit{}).Validate(), ErrRequiredField)
}

func TestOverdueAlert(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	a := NewOverdueAlert(&OverduePayment{
		PaymentID:       "p-1",
		ReceiptNumber:   "RCPT-1",
		TenantFirstName: "Ada",
		TenantLastName:  "Lovelace",
	}, now)

	assert.Equal(t, "p-1", a.RentPaymentID)
	assert.Equal(t, "Payment RCPT-1 for tenant Ada Lovelace is overdue.", a.Message)
	assert.False(t, a.IsAcknowledged)
	assert.Equal(t, now, a.AlertDate)

	a.Acknowledge(now.Add(time.Hour))
	assert.True(t, a.IsAcknowledged)

	assert.Equal(t, day(2024, time.March, 7), OverdueThreshold(now, DefaultOverdueDays))
}

func TestReceiptLog(t *testing.T) {
	d := &PaymentDetail{TenantFirstName: "Ada", TenantLastName: "Lovelace"}
	d.ID = "p-1"
	d.ReceiptNumber = "RCPT-1"

	log := NewReceiptLog(d, []byte("%PDF"), time.Now())
	assert.Equal(t, DocumentTypeReceipt, log.DocumentType)
	assert.Equal(t, "RCPT-1.pdf", log.FileName)
	assert.Equal(t, ContentTypePDF, log.ContentType)
	require.NotNil(t, log.RentPaymentID)
	assert.Equal(t, "p-1", *log.RentPaymentID)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(log.Metadata, &meta))
	assert.Equal(t, "Ada Lovelace", meta["tenant"])
}

func TestMonthRangeAndDefaultRange(t *testing.T) {
	start, end := MonthRange(time.Date(2024, time.February, 29, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, day(2024, time.February, 1), start)
	assert.Equal(t, day(2024, time.March, 1), end)

	now := day(2024, time.June, 15)
	from, to := DefaultRange(nil, nil, 3, now)
	assert.Equal(t, day(2024, time.March, 15), from)
	assert.Equal(t, now, to)

	explicit := day(2024, time.January, 1)
	from, _ = DefaultRange(&explicit, nil, 3, now)
	assert.Equal(t, explicit, from)
}
