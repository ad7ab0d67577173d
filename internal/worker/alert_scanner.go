package worker

import (
	"context"
	"sync"
	"time"

	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"go.uber.org/zap"
)

// AlertGenerator runs one overdue payment scan
type AlertGenerator interface {
	GenerateAlerts(ctx context.Context) (int, error)
}

// AlertScannerConfig holds configuration for the alert scanner
type AlertScannerConfig struct {
	// ScanInterval is how often overdue payments are scanned
	ScanInterval time.Duration
	// RunOnStart triggers a scan as soon as the scanner starts
	RunOnStart bool
	// ScanTimeout bounds a single scan
	ScanTimeout time.Duration
}

// DefaultAlertScannerConfig returns default configuration
func DefaultAlertScannerConfig() *AlertScannerConfig {
	return &AlertScannerConfig{
		ScanInterval: 6 * time.Hour,
		RunOnStart:   true,
		ScanTimeout:  5 * time.Minute,
	}
}

// AlertScanner periodically raises alerts for overdue rent payments
type AlertScanner struct {
	generator AlertGenerator
	config    *AlertScannerConfig
	log       *logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	scanMu  sync.Mutex

	// Stats
	totalRuns      int64
	totalAlerts    int64
	totalFailures  int64
	lastScanTime   time.Time
	lastAlertCount int
	lastError      string
}

// AlertScannerStats holds scanner statistics
type AlertScannerStats struct {
	IsRunning      bool      `json:"is_running"`
	TotalRuns      int64     `json:"total_runs"`
	TotalAlerts    int64     `json:"total_alerts"`
	TotalFailures  int64     `json:"total_failures"`
	LastScanTime   time.Time `json:"last_scan_time"`
	LastAlertCount int       `json:"last_alert_count"`
	LastError      string    `json:"last_error,omitempty"`
}

// NewAlertScanner creates a new alert scanner. A nil config uses the defaults.
func NewAlertScanner(generator AlertGenerator, config *AlertScannerConfig) *AlertScanner {
	if config == nil {
		config = DefaultAlertScannerConfig()
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = DefaultAlertScannerConfig().ScanInterval
	}
	return &AlertScanner{
		generator: generator,
		config:    config,
		log:       logger.Get().Component("alert-scanner"),
	}
}

// Start launches the scan loop. It returns immediately; calling it twice is a no-op.
func (s *AlertScanner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.log.Info("Alert scanner started",
		zap.Duration("scan_interval", s.config.ScanInterval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	go s.loop(ctx, s.done)
}

// Stop cancels the loop and waits for an in-flight scan to finish
func (s *AlertScanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.log.Info("Alert scanner stopped")
}

func (s *AlertScanner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single scan and records its outcome. Failures are logged, not returned,
// so the loop keeps going.
func (s *AlertScanner) RunOnce(ctx context.Context) int {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if s.config.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ScanTimeout)
		defer cancel()
	}

	start := time.Now()
	raised, err := s.generator.GenerateAlerts(ctx)

	s.mu.Lock()
	s.totalRuns++
	s.lastScanTime = start
	if err != nil {
		s.totalFailures++
		s.lastError = err.Error()
	} else {
		s.totalAlerts += int64(raised)
		s.lastAlertCount = raised
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.ErrorContext(ctx, "Alert scan failed", zap.Error(err))
		return 0
	}
	if raised > 0 {
		s.log.InfoContext(ctx, "Alert scan raised alerts",
			zap.Int("raised", raised),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return raised
}

// GetStats returns scanner statistics
func (s *AlertScanner) GetStats() *AlertScannerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &AlertScannerStats{
		IsRunning:      s.running,
		TotalRuns:      s.totalRuns,
		TotalAlerts:    s.totalAlerts,
		TotalFailures:  s.totalFailures,
		LastScanTime:   s.lastScanTime,
		LastAlertCount: s.lastAlertCount,
		LastError:      s.lastError,
	}
}
