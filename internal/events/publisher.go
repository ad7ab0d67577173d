package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Event is a domain event keyed for partitioning
type Event interface {
	Type() string
	Key() string
}

// Publisher emits domain events. Publishing never fails the caller;
// delivery errors are logged.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close(ctx context.Context) error
}

// New returns a Kafka publisher when enabled, otherwise a no-op publisher
func New(cfg *config.KafkaConfig, defaultTopic string) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return NewNoopPublisher(), nil
	}
	return NewKafkaPublisher(cfg, defaultTopic)
}

// KafkaPublisher produces JSON events with franz-go
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	log    *logger.Logger
}

// NewKafkaPublisher connects a producer client to the configured brokers
func NewKafkaPublisher(cfg *config.KafkaConfig, defaultTopic string) (*KafkaPublisher, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50 * time.Millisecond),
		kgo.RecordDeliveryTimeout(30 * time.Second),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{
		client: client,
		topic:  topic,
		log:    logger.Get().Component("events"),
	}, nil
}

// Record builds the Kafka record for an event
func Record(ctx context.Context, event Event) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	headers := []kgo.RecordHeader{{Key: "event_type", Value: []byte(event.Type())}}
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		headers = append(headers, kgo.RecordHeader{Key: "trace_id", Value: []byte(traceID)})
	}
	return &kgo.Record{
		Key:     []byte(event.Key()),
		Value:   value,
		Headers: headers,
	}, nil
}

// Publish produces asynchronously; the request context only feeds tracing
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	rec, err := Record(ctx, event)
	if err != nil {
		p.log.ErrorContext(ctx, "Failed to encode event", zap.String("event_type", event.Type()), zap.Error(err))
		return
	}

	p.client.Produce(context.WithoutCancel(ctx), rec, func(r *kgo.Record, err error) {
		if err != nil {
			p.log.Error("Failed to publish event",
				zap.String("topic", p.topic),
				zap.String("event_type", event.Type()),
				zap.String("key", event.Key()),
				zap.Error(err),
			)
			return
		}
		p.log.Debug("Event published",
			zap.String("topic", r.Topic),
			zap.String("event_type", event.Type()),
			zap.Int32("partition", r.Partition),
			zap.Int64("offset", r.Offset),
		)
	})
}

// Close flushes buffered records and closes the client
func (p *KafkaPublisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// NoopPublisher keeps published events in memory
type NoopPublisher struct {
	mu     sync.Mutex
	events []Event
}

// NewNoopPublisher creates a NoopPublisher
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event Event) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	logger.DebugCtx(ctx, "Event dropped, publisher disabled", zap.String("event_type", event.Type()))
}

func (p *NoopPublisher) Close(context.Context) error {
	return nil
}

// Events returns what was published so far
func (p *NoopPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
