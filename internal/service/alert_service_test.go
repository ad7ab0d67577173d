package service

import (
	"context"
	"testing"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlerts(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	overdue := env.createPayment(t, contract.ID, date(2025, time.March, 5))

	raised, err := env.alerts.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, raised)

	p, err := env.payments.GetPayment(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentPaymentStatusLate, p.Status)

	active, err := env.alerts.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, overdue.ID, active[0].RentPaymentID)
	assert.Equal(t, "Payment "+overdue.ReceiptNumber+" for tenant Ada Lovelace is overdue.", active[0].Message)
	assert.False(t, active[0].IsAcknowledged)
	assert.Equal(t, testNow, active[0].AlertDate)
	assert.Contains(t, eventTypes(env.publisher), dto.EventAlertRaised)

	again, err := env.alerts.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again)

	active, err = env.alerts.GetActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestGenerateAlerts_SkipsRecentAndPaid(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)

	// two days overdue is inside the grace period
	env.createPayment(t, contract.ID, date(2025, time.March, 8))
	paid := env.createPayment(t, contract.ID, date(2025, time.March, 1))
	env.record(t, paid.ID, 1800, date(2025, time.March, 2))

	raised, err := env.alerts.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, raised)
	assert.NotContains(t, eventTypes(env.publisher), dto.EventAlertRaised)
}

func TestGenerateAlerts_UnderpaidPaymentIsAlerted(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	p := env.createPayment(t, contract.ID, date(2025, time.March, 1))
	env.record(t, p.ID, 500, date(2025, time.February, 28))

	raised, err := env.alerts.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, raised)
}

func TestGenerateAlerts_GracePeriod(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	env.createPayment(t, contract.ID, date(2025, time.March, 9))

	strict := NewAlertService(env.store.Alerts(), env.publisher, env.cache, telemetry.NoopMetrics(), 0)
	strict.(*alertService).now = func() time.Time { return testNow }

	raised, err := strict.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, raised)
}

func TestAcknowledge(t *testing.T) {
	env := newTestEnv(t)
	contract := env.seedContract(t)
	env.createPayment(t, contract.ID, date(2025, time.March, 5))

	_, err := env.alerts.GenerateAlerts(context.Background())
	require.NoError(t, err)
	active, err := env.alerts.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, env.alerts.Acknowledge(context.Background(), active[0].ID))
	active, err = env.alerts.GetActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	// an unknown id is ignored
	assert.NoError(t, env.alerts.Acknowledge(context.Background(), "missing"))

	// a closed alert does not stop the next scan from raising a fresh one
	env.now = testNow.Add(24 * time.Hour)
	raised, err := env.alerts.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, raised)
}

func TestAcknowledge_UnknownAlertIsNoop(t *testing.T) {
	env := newTestEnv(t)

	assert.NoError(t, env.alerts.Acknowledge(context.Background(), "00000000-0000-0000-0000-000000000000"))

	active, err := env.alerts.GetActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGenerateAlerts_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.alerts.GenerateAlerts(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
}
