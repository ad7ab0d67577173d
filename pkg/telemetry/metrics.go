package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter for easier use
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter metric
func NewCounter(opts MetricOpts) (*Counter, error) {
	return newCounter(GetMeter(), opts)
}

func newCounter(meter metric.Meter, opts MetricOpts) (*Counter, error) {
	counter, err := meter.Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Gauge wraps an OTel gauge for easier use
type Gauge struct {
	gauge metric.Int64Gauge
}

// NewGauge creates a new gauge metric
func NewGauge(opts MetricOpts) (*Gauge, error) {
	return newGauge(GetMeter(), opts)
}

func newGauge(meter metric.Meter, opts MetricOpts) (*Gauge, error) {
	gauge, err := meter.Int64Gauge(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Gauge{gauge: gauge}, nil
}

// Record sets the gauge to the given value
func (g *Gauge) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	g.gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel histogram for easier use
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram metric
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	return newHistogram(GetMeter(), opts)
}

func newHistogram(meter metric.Meter, opts MetricOpts) (*Histogram, error) {
	histogram, err := meter.Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// NewHistogramWithBuckets creates a new histogram with custom bucket boundaries
func NewHistogramWithBuckets(opts MetricOpts, boundaries []float64) (*Histogram, error) {
	return newHistogramWithBuckets(GetMeter(), opts, boundaries)
}

func newHistogramWithBuckets(meter metric.Meter, opts MetricOpts, boundaries []float64) (*Histogram, error) {
	histogram, err := meter.Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
		metric.WithExplicitBucketBoundaries(boundaries...),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// UpDownCounter wraps an OTel up-down counter for values that can increase and decrease
type UpDownCounter struct {
	counter metric.Int64UpDownCounter
}

// NewUpDownCounter creates a new up-down counter metric
func NewUpDownCounter(opts MetricOpts) (*UpDownCounter, error) {
	return newUpDownCounter(GetMeter(), opts)
}

func newUpDownCounter(meter metric.Meter, opts MetricOpts) (*UpDownCounter, error) {
	counter, err := meter.Int64UpDownCounter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &UpDownCounter{counter: counter}, nil
}

// Add adds the given value to the counter (can be negative)
func (c *UpDownCounter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *UpDownCounter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Dec decrements the counter by 1
func (c *UpDownCounter) Dec(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, -1, metric.WithAttributes(attrs...))
}

// Common metric attribute keys
const (
	AttrMethod        = "http.method"
	AttrRoute         = "http.route"
	AttrStatusCode    = "http.status_code"
	AttrErrorType     = "error.type"
	AttrPaymentID     = "rent_payment.id"
	AttrContractID    = "rental_contract.id"
	AttrPaymentStatus = "rent_payment.status"
	AttrCurrency      = "currency"
	AttrDocumentType  = "document.type"
)

func MethodAttr(method string) attribute.KeyValue {
	return attribute.String(AttrMethod, method)
}

func RouteAttr(route string) attribute.KeyValue {
	return attribute.String(AttrRoute, route)
}

func StatusCodeAttr(code int) attribute.KeyValue {
	return attribute.Int(AttrStatusCode, code)
}

func ErrorTypeAttr(errType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errType)
}

func PaymentIDAttr(id string) attribute.KeyValue {
	return attribute.String(AttrPaymentID, id)
}

func ContractIDAttr(id string) attribute.KeyValue {
	return attribute.String(AttrContractID, id)
}

func PaymentStatusAttr(status string) attribute.KeyValue {
	return attribute.String(AttrPaymentStatus, status)
}

func CurrencyAttr(code string) attribute.KeyValue {
	return attribute.String(AttrCurrency, code)
}

func DocumentTypeAttr(t string) attribute.KeyValue {
	return attribute.String(AttrDocumentType, t)
}

// AppMetrics groups the instruments the application records
type AppMetrics struct {
	PaymentsRecorded  *Counter
	ReceiptsSent      *Counter
	AlertsRaised      *Counter
	AlertScanDuration *Histogram
	AlertScanLast     *Gauge
	HTTPRequests      *Counter
	HTTPDuration      *Histogram
	HTTPInFlight      *UpDownCounter
}

// NewAppMetrics registers the application instruments on the global meter.
// Call it after Init so the instruments bind to the configured provider.
func NewAppMetrics() (*AppMetrics, error) {
	return newAppMetrics(GetMeter())
}

// NoopMetrics returns instruments bound to a no-op meter, for tests and one-shot commands
func NoopMetrics() *AppMetrics {
	m, err := newAppMetrics(noop.NewMeterProvider().Meter("noop"))
	if err != nil {
		panic(err)
	}
	return m
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var (
		m   AppMetrics
		err error
	)
	if m.PaymentsRecorded, err = newCounter(meter, MetricOpts{
		Name:        "rent_payments_recorded_total",
		Description: "Rent payments recorded, by resulting status",
		Unit:        "{payment}",
	}); err != nil {
		return nil, err
	}
	if m.ReceiptsSent, err = newCounter(meter, MetricOpts{
		Name:        "receipts_sent_total",
		Description: "Receipts delivered to tenants",
		Unit:        "{receipt}",
	}); err != nil {
		return nil, err
	}
	if m.AlertsRaised, err = newCounter(meter, MetricOpts{
		Name:        "alerts_raised_total",
		Description: "Late payment alerts raised by the scanner",
		Unit:        "{alert}",
	}); err != nil {
		return nil, err
	}
	if m.AlertScanDuration, err = newHistogramWithBuckets(meter, MetricOpts{
		Name:        "alert_scan_duration_seconds",
		Description: "Duration of one late payment scan",
		Unit:        "s",
	}, []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}); err != nil {
		return nil, err
	}
	if m.AlertScanLast, err = newGauge(meter, MetricOpts{
		Name:        "alert_scan_last_alerts",
		Description: "Alerts raised by the most recent scan",
		Unit:        "{alert}",
	}); err != nil {
		return nil, err
	}
	if m.HTTPRequests, err = newCounter(meter, MetricOpts{
		Name:        "http_requests_total",
		Description: "HTTP requests served",
		Unit:        "{request}",
	}); err != nil {
		return nil, err
	}
	if m.HTTPDuration, err = newHistogram(meter, MetricOpts{
		Name:        "http_request_duration_seconds",
		Description: "HTTP request latency",
		Unit:        "s",
	}); err != nil {
		return nil, err
	}
	if m.HTTPInFlight, err = newUpDownCounter(meter, MetricOpts{
		Name:        "http_requests_in_flight",
		Description: "HTTP requests currently being served",
		Unit:        "{request}",
	}); err != nil {
		return nil, err
	}
	return &m, nil
}
