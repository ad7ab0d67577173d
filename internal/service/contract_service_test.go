package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContract_SchedulesFirstPayment(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)

	assert.Equal(t, "Ada Lovelace", contract.TenantName)
	assert.Equal(t, "Unit 4B", contract.RentalUnitName)
	assert.Equal(t, domain.ContractStatusActive, contract.Status)
	assert.Equal(t, domain.PaymentScheduleMonthly, contract.PaymentSchedule)

	payments, err := env.payments.GetByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	// created on the 10th with due day 5: first due date is the 5th of next month
	first := payments[0]
	assert.Equal(t, date(2025, time.April, 5), first.DueDate)
	assertAmount(t, "1800", first.AmountDue)
	assert.Equal(t, domain.RentPaymentStatusPending, first.Status)
	assert.Equal(t, domain.CurrencyUSD, first.Currency)
	prefix := strings.ToUpper(strings.ReplaceAll(contract.ID, "-", "")[:8])
	assert.Equal(t, "RCPT-"+prefix+"-20250310", first.ReceiptNumber)

	unit, err := env.units.GetUnit(context.Background(), contract.RentalUnitID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalUnitStatusOccupied, unit.Status)

	assert.Equal(t, []string{dto.EventPaymentCreated}, eventTypes(env.publisher))
}

func TestCreateContract_DueDayLaterThisMonth(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.createTenant(t)
	unit := env.createUnit(t, "Unit 1A")

	req := contractRequest(tenant.ID, unit.ID)
	req.PaymentDueDay = 15
	contract, err := env.contracts.CreateContract(context.Background(), req)
	require.NoError(t, err)

	payments, err := env.payments.GetByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, date(2025, time.March, 15), payments[0].DueDate)
}

func TestCreateContract_Defaults(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.createTenant(t)
	unit := env.createUnit(t, "Unit 1A")

	contract, err := env.contracts.CreateContract(context.Background(), &dto.CreateRentalContractRequest{
		TenantID:     tenant.ID,
		RentalUnitID: unit.ID,
		StartDate:    dto.Date{Time: date(2025, time.March, 1)},
		MonthlyRent:  decimal.NewFromInt(150000),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyXAF, contract.Currency)
	assert.Equal(t, 1, contract.PaymentDueDay)
	assert.Equal(t, domain.PaymentScheduleMonthly, contract.PaymentSchedule)

	payments, err := env.payments.GetByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, date(2025, time.April, 1), payments[0].DueDate)
	assert.Equal(t, domain.CurrencyXAF, payments[0].Currency)
}

func TestCreateContract_NonMonthlyHasNoInitialPayment(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.createTenant(t)
	unit := env.createUnit(t, "Unit 1A")

	req := contractRequest(tenant.ID, unit.ID)
	req.PaymentSchedule = domain.PaymentScheduleQuarterly
	contract, err := env.contracts.CreateContract(context.Background(), req)
	require.NoError(t, err)

	payments, err := env.payments.GetByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Empty(t, env.publisher.Events())
}

func TestCreateContract_Rejected(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	tenant := env.createTenant(t)
	free := env.createUnit(t, "Unit 9Z")

	t.Run("occupied unit", func(t *testing.T) {
		_, err := env.contracts.CreateContract(context.Background(), contractRequest(tenant.ID, contract.RentalUnitID))
		assert.ErrorIs(t, err, ErrUnitOccupied)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := env.contracts.CreateContract(context.Background(), contractRequest("00000000-0000-0000-0000-000000000001", free.ID))
		assert.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := env.contracts.CreateContract(context.Background(), contractRequest(tenant.ID, "00000000-0000-0000-0000-000000000002"))
		assert.ErrorIs(t, err, ErrUnitNotFound)
	})

	t.Run("zero rent", func(t *testing.T) {
		req := contractRequest(tenant.ID, free.ID)
		req.MonthlyRent = decimal.Zero
		_, err := env.contracts.CreateContract(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("end before start", func(t *testing.T) {
		req := contractRequest(tenant.ID, free.ID)
		req.EndDate = &dto.Date{Time: date(2024, time.January, 1)}
		_, err := env.contracts.CreateContract(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		req := contractRequest(tenant.ID, free.ID)
		req.Currency = "JPY"
		_, err := env.contracts.CreateContract(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	unit, err := env.units.GetUnit(context.Background(), free.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalUnitStatusAvailable, unit.Status)
}

func TestUpdateContract(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	end := dto.Date{Time: date(2026, time.February, 28)}

	updated, err := env.contracts.UpdateContract(context.Background(), contract.ID, &dto.UpdateRentalContractRequest{
		StartDate:       dto.Date{Time: contract.StartDate},
		EndDate:         &end,
		MonthlyRent:     decimal.NewFromInt(1900),
		DepositAmount:   decimal.NewFromInt(3800),
		PaymentDueDay:   10,
		PaymentSchedule: domain.PaymentScheduleMonthly,
		Status:          domain.ContractStatusActive,
	})
	require.NoError(t, err)
	assertAmount(t, "1900", updated.MonthlyRent)
	assert.Equal(t, 10, updated.PaymentDueDay)
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, date(2026, time.February, 28), *updated.EndDate)
	assert.Equal(t, contract.TenantID, updated.TenantID)
	assert.Equal(t, domain.CurrencyUSD, updated.Currency)

	_, err = env.contracts.UpdateContract(context.Background(), "missing", &dto.UpdateRentalContractRequest{})
	assert.ErrorIs(t, err, ErrContractNotFound)

	_, err = env.contracts.UpdateContract(context.Background(), contract.ID, &dto.UpdateRentalContractRequest{
		StartDate:       dto.Date{Time: contract.StartDate},
		MonthlyRent:     decimal.NewFromInt(1900),
		PaymentDueDay:   10,
		PaymentSchedule: "Weekly",
		Status:          domain.ContractStatusActive,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAndGetContracts(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)

	got, err := env.contracts.GetContract(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unit 4B", got.RentalUnitName)

	all, err := env.contracts.ListContracts(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.contracts.GetContract(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestDeleteContract(t *testing.T) {
	t.Run("pending payments only", func(t *testing.T) {
		env := newTestEnv(t)
		contract := env.seedContract(t)

		require.NoError(t, env.contracts.DeleteContract(context.Background(), contract.ID))

		_, err := env.contracts.GetContract(context.Background(), contract.ID)
		assert.ErrorIs(t, err, ErrContractNotFound)
		payments, err := env.payments.GetByContract(context.Background(), contract.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
		unit, err := env.units.GetUnit(context.Background(), contract.RentalUnitID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalUnitStatusAvailable, unit.Status)
	})

	t.Run("processed payment blocks delete", func(t *testing.T) {
		env := newTestEnv(t)
		contract := env.seedContract(t)
		p := env.createPayment(t, contract.ID, date(2025, time.March, 20))
		env.record(t, p.ID, 1800, testNow)

		err := env.contracts.DeleteContract(context.Background(), contract.ID)
		assert.ErrorIs(t, err, ErrContractHasProcessed)
		assert.ErrorIs(t, err, ErrInvalidOperation)

		_, err = env.contracts.GetContract(context.Background(), contract.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown contract", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.contracts.DeleteContract(context.Background(), "missing"), ErrContractNotFound)
	})
}

func TestTenantService(t *testing.T) {
	env := newTestEnv(t)

	tenant, err := env.tenants.CreateTenant(context.Background(), &dto.TenantRequest{
		FirstName: "  Grace ",
		LastName:  "Hopper",
		Email:     " Grace@Example.COM ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, "Grace", tenant.FirstName)
	assert.Equal(t, "grace@example.com", tenant.Email)
	assert.Equal(t, testNow, tenant.CreatedAt)

	env.now = testNow.Add(time.Hour)
	updated, err := env.tenants.UpdateTenant(context.Background(), tenant.ID, &dto.TenantRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@navy.mil",
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, updated.ID)
	assert.Equal(t, testNow, updated.CreatedAt)
	assert.Equal(t, testNow.Add(time.Hour), updated.UpdatedAt)

	_, err = env.tenants.CreateTenant(context.Background(), &dto.TenantRequest{FirstName: "No", LastName: "Mail"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.tenants.UpdateTenant(context.Background(), "missing", &dto.TenantRequest{FirstName: "a", LastName: "b", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	tenants, err := env.tenants.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Len(t, tenants, 1)

	require.NoError(t, env.tenants.DeleteTenant(context.Background(), tenant.ID))
	_, err = env.tenants.GetTenant(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, ErrTenantNotFound)
	assert.ErrorIs(t, env.tenants.DeleteTenant(context.Background(), tenant.ID), ErrTenantNotFound)
}

func TestDeleteTenantAndUnit_WithContracts(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)

	err := env.tenants.DeleteTenant(context.Background(), contract.TenantID)
	assert.ErrorIs(t, err, ErrTenantHasContracts)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	err = env.units.DeleteUnit(context.Background(), contract.RentalUnitID)
	assert.ErrorIs(t, err, ErrUnitHasContracts)

	require.NoError(t, env.contracts.DeleteContract(context.Background(), contract.ID))
	assert.NoError(t, env.units.DeleteUnit(context.Background(), contract.RentalUnitID))
	assert.NoError(t, env.tenants.DeleteTenant(context.Background(), contract.TenantID))
}

func TestRentalUnitService(t *testing.T) {
	env := newTestEnv(t)

	unit := env.createUnit(t, "  Loft  ")
	assert.Equal(t, "Loft", unit.Name)
	assert.Equal(t, domain.RentalUnitStatusAvailable, unit.Status)

	maintenance, err := env.units.UpdateUnit(context.Background(), unit.ID, &dto.RentalUnitRequest{
		Name:         "Loft",
		AddressLine1: "1 Main St",
		City:         "Yaounde",
		MonthlyRent:  decimal.NewFromInt(2000),
		Status:       domain.RentalUnitStatusMaintenance,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RentalUnitStatusMaintenance, maintenance.Status)

	kept, err := env.units.UpdateUnit(context.Background(), unit.ID, &dto.RentalUnitRequest{
		Name:         "Loft",
		AddressLine1: "1 Main St",
		City:         "Yaounde",
		MonthlyRent:  decimal.NewFromInt(2100),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RentalUnitStatusMaintenance, kept.Status)
	assertAmount(t, "2100", kept.MonthlyRent)

	_, err = env.units.CreateUnit(context.Background(), &dto.RentalUnitRequest{Name: "Bad", MonthlyRent: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.units.GetUnit(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnitNotFound)

	units, err := env.units.ListUnits(context.Background())
	require.NoError(t, err)
	assert.Len(t, units, 1)

	require.NoError(t, env.units.DeleteUnit(context.Background(), unit.ID))
	assert.ErrorIs(t, env.units.DeleteUnit(context.Background(), unit.ID), ErrUnitNotFound)
}
