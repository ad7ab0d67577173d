package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *MemoryStore
	tenant   *domain.Tenant
	unit     *domain.RentalUnit
	contract *domain.RentalContract
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()

	tenant := &domain.Tenant{ID: uuid.NewString(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Tenants().Create(ctx, tenant))

	unit := &domain.RentalUnit{ID: uuid.NewString(), Name: "Apt 1", Status: domain.RentalUnitStatusAvailable, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Units().Create(ctx, unit))

	contract := &domain.RentalContract{
		ID:           uuid.NewString(),
		TenantID:     tenant.ID,
		RentalUnitID: unit.ID,
		StartDate:    now,
		MonthlyRent:  decimal.NewFromInt(1800),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	contract.ApplyDefaults()
	require.NoError(t, s.Contracts().Create(ctx, contract, nil))

	return &fixture{store: s, tenant: tenant, unit: unit, contract: contract}
}

func (f *fixture) payment(t *testing.T, due time.Time, receipt string) *domain.RentPayment {
	t.Helper()
	p, err := domain.NewRentPayment(f.contract.ID, due, decimal.NewFromInt(1800), domain.CurrencyXAF, domain.ReceiptGrainMinute, due)
	require.NoError(t, err)
	if receipt != "" {
		p.ReceiptNumber = receipt
	}
	return p
}

func TestMemoryStore_ContractOccupiesUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unit, err := f.store.Units().GetByID(ctx, f.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalUnitStatusOccupied, unit.Status)

	second := *f.contract
	second.ID = uuid.NewString()
	err = f.store.Contracts().Create(ctx, &second, nil)
	assert.ErrorIs(t, err, ErrUnitOccupied)

	detail, err := f.store.Contracts().GetDetail(ctx, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", detail.TenantName)
	assert.Equal(t, "Apt 1", detail.RentalUnitName)
}

func TestMemoryStore_PaymentUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.store.Payments().Create(ctx, f.payment(t, due, "RCPT-A")))

	err := f.store.Payments().Create(ctx, f.payment(t, due, "RCPT-B"))
	assert.ErrorIs(t, err, ErrDuplicateDueDate)
	assert.ErrorIs(t, err, ErrDuplicate)

	err = f.store.Payments().Create(ctx, f.payment(t, due.AddDate(0, 1, 0), "RCPT-A"))
	assert.ErrorIs(t, err, ErrDuplicateReceipt)

	exists, err := f.store.Payments().ExistsForDueDate(ctx, f.contract.ID, due.Add(5*time.Hour))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStore_PaymentQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	april := time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC)
	may := april.AddDate(0, 1, 0)

	require.NoError(t, f.store.Payments().Create(ctx, f.payment(t, may, "RCPT-MAY")))
	require.NoError(t, f.store.Payments().Create(ctx, f.payment(t, april, "RCPT-APR")))

	upcoming, err := f.store.Payments().ListUpcoming(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "RCPT-APR", upcoming[0].ReceiptNumber)
	assert.Equal(t, "Ada", upcoming[0].TenantFirstName)
	assert.Equal(t, "Apt 1", upcoming[0].RentalUnitName)

	byContract, err := f.store.Payments().ListByContract(ctx, f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "RCPT-MAY", byContract[0].ReceiptNumber)

	usd := domain.CurrencyUSD
	filtered, err := f.store.Payments().ListDueBetween(ctx, april, may, &usd)
	require.NoError(t, err)
	assert.Empty(t, filtered)

	from := may
	later, err := f.store.Payments().ListUpcoming(ctx, &from, nil)
	require.NoError(t, err)
	assert.Len(t, later, 1)
}

func TestMemoryStore_DeleteContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.payment(t, time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, f.store.Payments().Create(ctx, p))

	p.Status = domain.RentPaymentStatusPaid
	require.NoError(t, f.store.Payments().Update(ctx, p))
	assert.ErrorIs(t, f.store.Contracts().Delete(ctx, f.contract.ID), ErrContractHasProcessed)

	p.Status = domain.RentPaymentStatusPending
	require.NoError(t, f.store.Payments().Update(ctx, p))
	require.NoError(t, f.store.Contracts().Delete(ctx, f.contract.ID))

	gone, err := f.store.Payments().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	unit, err := f.store.Units().GetByID(ctx, f.unit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalUnitStatusAvailable, unit.Status)

	assert.ErrorIs(t, f.store.Contracts().Delete(ctx, f.contract.ID), ErrNotFound)
}

func TestMemoryStore_Alerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	p := f.payment(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "RCPT-LATE")
	require.NoError(t, f.store.Payments().Create(ctx, p))

	overdue, err := f.store.Alerts().ListOverdue(ctx, domain.OverdueThreshold(now, 3))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Lovelace", overdue[0].TenantLastName)

	first := domain.NewOverdueAlert(overdue[0], now)
	duplicate := domain.NewOverdueAlert(overdue[0], now)
	raised, err := f.store.Alerts().Raise(ctx, []*domain.PaymentAlert{first, duplicate})
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, first.ID, raised[0].ID)

	stored, err := f.store.Payments().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentPaymentStatusLate, stored.Status)

	open, err := f.store.Alerts().HasOpenAlert(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, open)

	ok, err := f.store.Alerts().Acknowledge(ctx, first.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.store.Alerts().Acknowledge(ctx, uuid.NewString(), now)
	require.NoError(t, err)
	assert.False(t, ok)

	active, err := f.store.Alerts().ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMemoryStore_RaiseSkipsPaidPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	p := f.payment(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "RCPT-RACE")
	require.NoError(t, f.store.Payments().Create(ctx, p))

	overdue, err := f.store.Alerts().ListOverdue(ctx, domain.OverdueThreshold(now, 3))
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	// paid in full between the listing and the raise
	p.AmountPaid = p.AmountDue
	p.Status = domain.RentPaymentStatusPaid
	require.NoError(t, f.store.Payments().Update(ctx, p))

	raised, err := f.store.Alerts().Raise(ctx, []*domain.PaymentAlert{domain.NewOverdueAlert(overdue[0], now)})
	require.NoError(t, err)
	assert.Empty(t, raised)

	stored, err := f.store.Payments().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentPaymentStatusPaid, stored.Status)

	open, err := f.store.Alerts().HasOpenAlert(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestMemoryStore_MarkReceiptSent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.payment(t, time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, f.store.Payments().Create(ctx, p))

	p.AmountPaid = decimal.NewFromInt(900)
	p.Status = domain.RentPaymentStatusPartial
	require.NoError(t, f.store.Payments().Update(ctx, p))

	at := time.Date(2024, time.April, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Payments().MarkReceiptSent(ctx, p.ID, at))

	stored, err := f.store.Payments().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceiptSent)
	require.NotNil(t, stored.ReceiptSentAt)
	assert.Equal(t, at, *stored.ReceiptSentAt)
	assert.Equal(t, at, stored.UpdatedAt)
	assert.True(t, stored.AmountPaid.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, domain.RentPaymentStatusPartial, stored.Status)

	assert.ErrorIs(t, f.store.Payments().MarkReceiptSent(ctx, uuid.NewString(), at), ErrNotFound)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Tenants().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Payments().GetByID(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
