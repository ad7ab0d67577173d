package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mu      sync.Mutex
	results []int
	err     error
	calls   atomic.Int64
	block   chan struct{}
}

func (g *stubGenerator) GenerateAlerts(ctx context.Context) (int, error) {
	g.calls.Add(1)
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return 0, g.err
	}
	if len(g.results) == 0 {
		return 0, nil
	}
	n := g.results[0]
	g.results = g.results[1:]
	return n, nil
}

func TestDefaultAlertScannerConfig(t *testing.T) {
	config := DefaultAlertScannerConfig()

	assert.Equal(t, 6*time.Hour, config.ScanInterval)
	assert.True(t, config.RunOnStart)
	assert.Equal(t, 5*time.Minute, config.ScanTimeout)
}

func TestNewAlertScanner_WithDefaultConfig(t *testing.T) {
	scanner := NewAlertScanner(&stubGenerator{}, nil)

	require.NotNil(t, scanner)
	require.NotNil(t, scanner.config)
	assert.Equal(t, 6*time.Hour, scanner.config.ScanInterval)
	assert.False(t, scanner.running)
}

func TestNewAlertScanner_InvalidIntervalFallsBack(t *testing.T) {
	scanner := NewAlertScanner(&stubGenerator{}, &AlertScannerConfig{ScanInterval: 0})

	assert.Equal(t, 6*time.Hour, scanner.config.ScanInterval)
}

func TestAlertScanner_RunOnce(t *testing.T) {
	gen := &stubGenerator{results: []int{3, 0}}
	scanner := NewAlertScanner(gen, &AlertScannerConfig{ScanInterval: time.Hour})

	assert.Equal(t, 3, scanner.RunOnce(context.Background()))
	assert.Equal(t, 0, scanner.RunOnce(context.Background()))

	stats := scanner.GetStats()
	assert.False(t, stats.IsRunning)
	assert.Equal(t, int64(2), stats.TotalRuns)
	assert.Equal(t, int64(3), stats.TotalAlerts)
	assert.Equal(t, int64(0), stats.TotalFailures)
	assert.Equal(t, 0, stats.LastAlertCount)
	assert.Empty(t, stats.LastError)
	assert.False(t, stats.LastScanTime.IsZero())
}

func TestAlertScanner_FailureIsRecorded(t *testing.T) {
	gen := &stubGenerator{err: errors.New("database unavailable")}
	scanner := NewAlertScanner(gen, &AlertScannerConfig{ScanInterval: time.Hour})

	assert.Equal(t, 0, scanner.RunOnce(context.Background()))

	stats := scanner.GetStats()
	assert.Equal(t, int64(1), stats.TotalRuns)
	assert.Equal(t, int64(1), stats.TotalFailures)
	assert.Equal(t, "database unavailable", stats.LastError)

	// a later success clears the error
	gen.mu.Lock()
	gen.err = nil
	gen.results = []int{2}
	gen.mu.Unlock()
	assert.Equal(t, 2, scanner.RunOnce(context.Background()))
	assert.Empty(t, scanner.GetStats().LastError)
}

func TestAlertScanner_StartStop(t *testing.T) {
	gen := &stubGenerator{results: []int{1}}
	scanner := NewAlertScanner(gen, &AlertScannerConfig{
		ScanInterval: 10 * time.Millisecond,
		RunOnStart:   true,
	})

	scanner.Start(context.Background())
	// a second start does not launch another loop
	scanner.Start(context.Background())
	assert.True(t, scanner.GetStats().IsRunning)

	assert.Eventually(t, func() bool {
		return scanner.GetStats().TotalRuns >= 3
	}, time.Second, 5*time.Millisecond)

	scanner.Stop()
	stats := scanner.GetStats()
	assert.False(t, stats.IsRunning)
	assert.Equal(t, int64(1), stats.TotalAlerts)

	runs := gen.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, gen.calls.Load())

	// stopping twice is safe
	scanner.Stop()
}

func TestAlertScanner_StopWaitsForInFlightScan(t *testing.T) {
	gen := &stubGenerator{block: make(chan struct{})}
	scanner := NewAlertScanner(gen, &AlertScannerConfig{
		ScanInterval: time.Hour,
		RunOnStart:   true,
	})
	scanner.Start(context.Background())

	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		scanner.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a scan was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(gen.block)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the scan finished")
	}
	assert.Equal(t, int64(1), scanner.GetStats().TotalRuns)
}

func TestAlertScanner_ParentContextCancel(t *testing.T) {
	gen := &stubGenerator{}
	scanner := NewAlertScanner(gen, &AlertScannerConfig{ScanInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	scanner.Start(ctx)
	require.Eventually(t, func() bool { return gen.calls.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	scanner.Stop()
	assert.False(t, scanner.GetStats().IsRunning)
}
