package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	env.createUnit(t, "Unit 5C")

	feb := env.createPayment(t, contract.ID, date(2025, time.February, 5))
	mar := env.createPayment(t, contract.ID, date(2025, time.March, 5))
	env.record(t, feb.ID, 1800, date(2025, time.February, 6))
	env.record(t, mar.ID, 1000, date(2025, time.March, 8))

	m, err := env.reports.GetDashboard(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, m.TotalTenants)
	assert.Equal(t, 2, m.TotalUnits)
	assert.Equal(t, 1, m.OccupiedUnits)
	assert.Equal(t, 1, m.VacantUnits)
	assertAmount(t, "1800", m.MonthlyRecurringRevenue)
	assertAmount(t, "1000", m.MonthlyCollected)
	assertAmount(t, "800", m.MonthlyOutstanding)

	// the April payment generated with the contract lies past the range end
	require.Len(t, m.RentCollection, 2)
	assert.Equal(t, 2025, m.RentCollection[0].Year)
	assert.Equal(t, 2, m.RentCollection[0].Month)
	assertAmount(t, "1800", m.RentCollection[0].AmountDue)
	assertAmount(t, "1800", m.RentCollection[0].AmountPaid)
	assert.Equal(t, 3, m.RentCollection[1].Month)
	assertAmount(t, "1000", m.RentCollection[1].AmountPaid)

	require.Len(t, m.Occupancy, 1)
	assert.Equal(t, domain.OccupancyChartPoint{Year: 2025, Month: 3, OccupiedUnits: 1, VacantUnits: 1}, m.Occupancy[0])
}

func TestGetDashboard_Cache(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	p := env.createPayment(t, contract.ID, date(2025, time.March, 5))

	first, err := env.reports.GetDashboard(context.Background(), nil, nil)
	require.NoError(t, err)
	assertAmount(t, "0", first.MonthlyCollected)

	second, err := env.reports.GetDashboard(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, env.cache.hits)

	// recording a payment drops cached dashboards
	env.record(t, p.ID, 1800, testNow)
	third, err := env.reports.GetDashboard(context.Background(), nil, nil)
	require.NoError(t, err)
	assertAmount(t, "1800", third.MonthlyCollected)
	assert.Equal(t, 1, env.cache.hits)
}

func TestGetDashboard_ExplicitRange(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	env.createPayment(t, contract.ID, date(2025, time.January, 5))
	env.createPayment(t, contract.ID, date(2025, time.March, 5))

	from := date(2025, time.January, 1)
	to := date(2025, time.January, 31)
	m, err := env.reports.GetDashboard(context.Background(), &from, &to)
	require.NoError(t, err)

	require.Len(t, m.RentCollection, 1)
	assert.Equal(t, 1, m.RentCollection[0].Month)
	// the contract starts after the range
	assert.Empty(t, m.Occupancy)
	// nothing in range falls in the current month
	assertAmount(t, "0", m.MonthlyRecurringRevenue)
}

func TestExportPayments(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	env.createPayment(t, contract.ID, date(2025, time.February, 5))
	env.createPayment(t, contract.ID, date(2024, time.November, 5))

	t.Run("excel defaults to three months", func(t *testing.T) {
		content, name, err := env.reports.ExportPaymentsExcel(context.Background(), nil, nil, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
		assert.Equal(t, "payments-20241210-20250310.xlsx", name)
		assert.Equal(t, 1, env.renderer.lastPayments)
	})

	t.Run("currency filter is part of the file name", func(t *testing.T) {
		usd := domain.CurrencyUSD
		from := date(2024, time.January, 1)
		_, name, err := env.reports.ExportPaymentsPDF(context.Background(), &from, nil, &usd)
		require.NoError(t, err)
		assert.Equal(t, "payments-20240101-20250310-USD.pdf", name)
		assert.Equal(t, 2, env.renderer.lastPayments)

		eur := domain.CurrencyEUR
		_, _, err = env.reports.ExportPaymentsPDF(context.Background(), &from, nil, &eur)
		require.NoError(t, err)
		assert.Equal(t, 0, env.renderer.lastPayments)
	})

	t.Run("render failure", func(t *testing.T) {
		env.renderer.err = errors.New("layout overflow")
		defer func() { env.renderer.err = nil }()

		_, _, err := env.reports.ExportPaymentsPDF(context.Background(), nil, nil, nil)
		require.Error(t, err)
		_, classified := ClientMessage(err)
		assert.False(t, classified)
	})

	t.Run("cancelled request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := env.reports.ExportPaymentsExcel(ctx, nil, nil, nil)
		assert.ErrorIs(t, err, ErrCancelled)
	})
}

func TestReportFileName(t *testing.T) {
	from := date(2025, time.January, 1)
	to := date(2025, time.March, 31)
	xaf := domain.CurrencyXAF

	assert.Equal(t, "payments-20250101-20250331.pdf", reportFileName(from, to, nil, "pdf"))
	assert.Equal(t, "payments-20250101-20250331-XAF.xlsx", reportFileName(from, to, &xaf, "xlsx"))
}
