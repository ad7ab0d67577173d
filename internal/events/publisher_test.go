package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayment() *domain.RentPayment {
	return &domain.RentPayment{
		ID:               "pay-1",
		RentalContractID: "con-1",
		ReceiptNumber:    "RCPT-CON1-202501010000",
		DueDate:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		AmountDue:        decimal.NewFromInt(1800),
		AmountPaid:       decimal.NewFromInt(900),
		Currency:         domain.CurrencyUSD,
		Status:           domain.RentPaymentStatusPartial,
	}
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(&config.KafkaConfig{Enabled: false}, dto.TopicPayments)
	require.NoError(t, err)
	_, ok := p.(*NoopPublisher)
	assert.True(t, ok)

	p, err = New(nil, dto.TopicPayments)
	require.NoError(t, err)
	assert.NoError(t, p.Close(context.Background()))
}

func TestRecord(t *testing.T) {
	event := dto.NewPaymentEvent(dto.EventPaymentRecorded, samplePayment(), "op-1", time.Now())

	rec, err := Record(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, "pay-1", string(rec.Key))
	require.NotEmpty(t, rec.Headers)
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, dto.EventPaymentRecorded, string(rec.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, "900", decoded["amount_paid"])
	assert.Equal(t, "Partial", decoded["status"])
	assert.Equal(t, "2025-01-01", decoded["due_date"])
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	p.Publish(context.Background(), &dto.AlertRaisedEvent{EventType: dto.EventAlertRaised, PaymentID: "pay-1"})
	p.Publish(context.Background(), &dto.ReceiptSentEvent{EventType: dto.EventReceiptSent, PaymentID: "pay-1"})

	events := p.Events()
	require.Len(t, events, 2)
	assert.Equal(t, dto.EventAlertRaised, events[0].Type())
	assert.Equal(t, "pay-1", events[1].Key())
}

func TestNewKafkaPublisher_DefaultTopic(t *testing.T) {
	p, err := NewKafkaPublisher(&config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}}, dto.TopicPayments)
	require.NoError(t, err)
	defer p.client.Close()

	assert.Equal(t, dto.TopicPayments, p.topic)
}
