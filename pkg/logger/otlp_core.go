package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// OTLPCore is a zapcore.Core that batches entries and posts them to an
// OpenTelemetry collector using the OTLP/HTTP JSON encoding.
type OTLPCore struct {
	zapcore.LevelEnabler
	endpoint    string
	serviceName string
	client      *http.Client
	fields      []zapcore.Field

	// shared between cores derived through With
	state *otlpState
}

type otlpState struct {
	mu        sync.Mutex
	pending   []otlpRecord
	batchSize int
	stop      chan struct{}
	wg        sync.WaitGroup
}

type otlpValue map[string]any

type otlpAttr struct {
	Key   string    `json:"key"`
	Value otlpValue `json:"value"`
}

type otlpRecord struct {
	TimeUnixNano         int64      `json:"timeUnixNano,string"`
	ObservedTimeUnixNano int64      `json:"observedTimeUnixNano,string"`
	SeverityNumber       int32      `json:"severityNumber"`
	SeverityText         string     `json:"severityText"`
	Body                 otlpValue  `json:"body"`
	Attributes           []otlpAttr `json:"attributes,omitempty"`
	TraceID              string     `json:"traceId,omitempty"`
	SpanID               string     `json:"spanId,omitempty"`
}

// NewOTLPCore returns nil when cfg has no endpoint
func NewOTLPCore(cfg *Config, level zapcore.LevelEnabler) *OTLPCore {
	if cfg == nil || cfg.OTLPEndpoint == "" {
		return nil
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	interval := cfg.BatchInterval
	if interval <= 0 {
		interval = time.Second
	}
	timeout := cfg.OTLPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &OTLPCore{
		LevelEnabler: level,
		endpoint:     fmt.Sprintf("http://%s/v1/logs", cfg.OTLPEndpoint),
		serviceName:  cfg.ServiceName,
		client:       &http.Client{Timeout: timeout},
		state: &otlpState{
			pending:   make([]otlpRecord, 0, batchSize),
			batchSize: batchSize,
			stop:      make(chan struct{}),
		},
	}
	c.state.wg.Add(1)
	go c.loop(interval)
	return c
}

func (c *OTLPCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field{}, c.fields...), fields...)
	return &clone
}

func (c *OTLPCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *OTLPCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	rec := otlpRecord{
		TimeUnixNano:         ent.Time.UnixNano(),
		ObservedTimeUnixNano: time.Now().UnixNano(),
		SeverityNumber:       severity(ent.Level),
		SeverityText:         ent.Level.CapitalString(),
		Body:                 otlpValue{"stringValue": ent.Message},
	}
	if ent.Caller.Defined {
		rec.Attributes = append(rec.Attributes, otlpAttr{Key: "caller", Value: otlpValue{"stringValue": ent.Caller.TrimmedPath()}})
	}

	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range all {
		switch f.Key {
		case "trace_id":
			rec.TraceID = f.String
			continue
		case "span_id":
			rec.SpanID = f.String
			continue
		}
		f.AddTo(enc)
	}
	for k, v := range enc.Fields {
		rec.Attributes = append(rec.Attributes, otlpAttr{Key: k, Value: toValue(v)})
	}

	s := c.state
	s.mu.Lock()
	s.pending = append(s.pending, rec)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		go c.flush()
	}
	return nil
}

func (c *OTLPCore) Sync() error {
	c.flush()
	return nil
}

// Close stops the background flusher and sends what is left
func (c *OTLPCore) Close() error {
	close(c.state.stop)
	c.state.wg.Wait()
	c.flush()
	return nil
}

func (c *OTLPCore) loop(interval time.Duration) {
	defer c.state.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.flush()
		case <-c.state.stop:
			return
		}
	}
}

func (c *OTLPCore) flush() {
	s := c.state
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make([]otlpRecord, 0, s.batchSize)
	s.mu.Unlock()

	payload := map[string]any{
		"resourceLogs": []any{map[string]any{
			"resource": map[string]any{"attributes": []otlpAttr{
				{Key: "service.name", Value: otlpValue{"stringValue": c.serviceName}},
				{Key: "service.namespace", Value: otlpValue{"stringValue": "property-manager"}},
			}},
			"scopeLogs": []any{map[string]any{
				"scope":      map[string]string{"name": "go.uber.org/zap"},
				"logRecords": batch,
			}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: encode otlp batch: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.client.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "logger: otlp export status %d\n", resp.StatusCode)
	}
}

func severity(level zapcore.Level) int32 {
	switch level {
	case zapcore.DebugLevel:
		return 5
	case zapcore.InfoLevel:
		return 9
	case zapcore.WarnLevel:
		return 13
	case zapcore.ErrorLevel:
		return 17
	default:
		return 21
	}
}

func toValue(v any) otlpValue {
	switch t := v.(type) {
	case string:
		return otlpValue{"stringValue": t}
	case bool:
		return otlpValue{"boolValue": t}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return otlpValue{"intValue": fmt.Sprint(t)}
	case float32, float64:
		return otlpValue{"doubleValue": t}
	case time.Duration:
		return otlpValue{"stringValue": t.String()}
	case time.Time:
		return otlpValue{"stringValue": t.Format(time.RFC3339Nano)}
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return otlpValue{"stringValue": fmt.Sprint(t)}
		}
		return otlpValue{"stringValue": string(b)}
	}
}
