package logger

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextKey is the type for context keys owned by the logger
type ContextKey string

const (
	// RequestIDKey carries the inbound X-Request-ID
	RequestIDKey ContextKey = "request_id"
	// ActorKey carries the authenticated user id, when present
	ActorKey ContextKey = "actor"
)

// Logger wraps zap.Logger and remembers the service it belongs to
type Logger struct {
	*zap.Logger
	serviceName string
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
	initOnce     sync.Once
)

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	ServiceName string
	Development bool   // console encoder when true, JSON otherwise
	OutputPath  string // stdout, stderr or a file path

	// OTLP/HTTP log export
	OTLPEnabled   bool
	OTLPEndpoint  string // host:port of the collector HTTP receiver
	OTLPTimeout   time.Duration
	BatchSize     int
	BatchInterval time.Duration
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:         "info",
		ServiceName:   "property-manager",
		OutputPath:    "stdout",
		OTLPEndpoint:  "localhost:4318",
		OTLPTimeout:   5 * time.Second,
		BatchSize:     100,
		BatchInterval: time.Second,
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func openOutput(path string) (zapcore.WriteSyncer, error) {
	switch path {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

// New creates a Logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := parseLevel(cfg.Level)

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	out, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, out, level)}
	if cfg.OTLPEnabled && cfg.OTLPEndpoint != "" {
		if exp := NewOTLPCore(cfg, level); exp != nil {
			cores = append(cores, exp)
		}
	}

	zl := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(zap.String("service", cfg.ServiceName))

	return &Logger{Logger: zl, serviceName: cfg.ServiceName}, nil
}

// Init initializes the global logger once
func Init(cfg *Config) error {
	var err error
	initOnce.Do(func() {
		var l *Logger
		l, err = New(cfg)
		if err == nil {
			SetGlobal(l)
		}
	})
	return err
}

// SetGlobal replaces the global logger. Tests use it with zap's observer core.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Get returns the global logger, building a default one if Init was never called
func Get() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	_ = Init(DefaultConfig())
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return &Logger{Logger: zap.NewNop()}
	}
	return globalLogger
}

// FromZap wraps an existing zap logger
func FromZap(zl *zap.Logger, serviceName string) *Logger {
	return &Logger{Logger: zl, serviceName: serviceName}
}

// WithContext returns a logger carrying trace_id, span_id, request_id and actor from ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	fields := make([]zap.Field, 0, 4)

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if actor, ok := ctx.Value(ActorKey).(string); ok && actor != "" {
		fields = append(fields, zap.String("actor", actor))
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{Logger: l.Logger.With(fields...), serviceName: l.serviceName}
}

// WithFields returns a child logger with extra fields
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), serviceName: l.serviceName}
}

// Component returns a named child logger, e.g. "alert-scanner"
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), serviceName: l.serviceName}
}

// ServiceName returns the service name this logger reports
func (l *Logger) ServiceName() string {
	return l.serviceName
}

func (l *Logger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.WithContext(ctx).Debug(msg, fields...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.WithContext(ctx).Info(msg, fields...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.WithContext(ctx).Warn(msg, fields...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.WithContext(ctx).Error(msg, fields...)
}

// ContextWithRequestID stores a request id for WithContext to pick up
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// ContextWithActor stores the acting user id for WithContext to pick up
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFromContext returns the acting user id stored by ContextWithActor
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

// --- global helpers ---

func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { Get().Fatal(msg, fields...) }

func DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	Get().DebugContext(ctx, msg, fields...)
}

func InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	Get().InfoContext(ctx, msg, fields...)
}

func WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	Get().WarnContext(ctx, msg, fields...)
}

func ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	Get().ErrorContext(ctx, msg, fields...)
}

// WithContext returns the global logger enriched from ctx
func WithContext(ctx context.Context) *Logger {
	return Get().WithContext(ctx)
}

// Sync flushes the global logger
func Sync() error {
	return Get().Sync()
}
