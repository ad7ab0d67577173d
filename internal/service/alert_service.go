package service

import (
	"context"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/cache"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/events"
	"github.com/gtemgoua/property-manager-app/internal/repository"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"go.uber.org/zap"
)

// alertService implements the AlertService interface
type alertService struct {
	alertRepo   repository.AlertRepository
	publisher   events.Publisher
	dashboard   cache.DashboardCache
	metrics     *telemetry.AppMetrics
	overdueDays int
	now         func() time.Time
}

// NewAlertService creates a new AlertService. overdueDays below zero falls back to the default.
func NewAlertService(
	alertRepo repository.AlertRepository,
	publisher events.Publisher,
	dashboard cache.DashboardCache,
	metrics *telemetry.AppMetrics,
	overdueDays int,
) AlertService {
	if overdueDays < 0 {
		overdueDays = domain.DefaultOverdueDays
	}
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	if dashboard == nil {
		dashboard = cache.NoopDashboardCache{}
	}
	if metrics == nil {
		metrics = telemetry.NoopMetrics()
	}
	return &alertService{
		alertRepo:   alertRepo,
		publisher:   publisher,
		dashboard:   dashboard,
		metrics:     metrics,
		overdueDays: overdueDays,
		now:         time.Now,
	}
}

// GenerateAlerts marks overdue unpaid payments Late and raises one open alert per payment
func (s *alertService) GenerateAlerts(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.alert.scan")
	defer span.End()
	start := time.Now()

	now := s.now().UTC()
	threshold := domain.OverdueThreshold(now, s.overdueDays)
	overdue, err := s.alertRepo.ListOverdue(ctx, threshold)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return 0, storeError("list overdue payments", err)
	}

	alerts := make([]*domain.PaymentAlert, 0, len(overdue))
	for _, p := range overdue {
		open, err := s.alertRepo.HasOpenAlert(ctx, p.PaymentID)
		if err != nil {
			return 0, storeError("check open alert", err)
		}
		if open {
			continue
		}
		alerts = append(alerts, domain.NewOverdueAlert(p, now))
	}

	raised := alerts[:0]
	if len(alerts) > 0 {
		raised, err = s.alertRepo.Raise(ctx, alerts)
		if err != nil {
			telemetry.SetSpanError(ctx, err)
			return 0, storeError("raise alerts", err)
		}
	}

	s.metrics.AlertScanDuration.Record(ctx, time.Since(start).Seconds())
	s.metrics.AlertScanLast.Record(ctx, int64(len(raised)))
	if len(raised) > 0 {
		s.metrics.AlertsRaised.Add(ctx, int64(len(raised)))
		s.dashboard.Invalidate(ctx)
	}
	for _, a := range raised {
		s.publisher.Publish(ctx, &dto.AlertRaisedEvent{
			EventType: dto.EventAlertRaised,
			AlertID:   a.ID,
			PaymentID: a.RentPaymentID,
			Message:   a.Message,
			Timestamp: now,
		})
	}

	logger.InfoCtx(ctx, "Overdue payment scan finished",
		zap.Int("candidates", len(overdue)),
		zap.Int("alerts_raised", len(raised)),
		zap.Time("threshold", threshold),
	)
	return len(raised), nil
}

// GetActive returns open alerts, latest first
func (s *alertService) GetActive(ctx context.Context) ([]*domain.PaymentAlert, error) {
	alerts, err := s.alertRepo.ListActive(ctx)
	if err != nil {
		return nil, storeError("list alerts", err)
	}
	return alerts, nil
}

func (s *alertService) Acknowledge(ctx context.Context, id string) error {
	found, err := s.alertRepo.Acknowledge(ctx, id, s.now())
	if err != nil {
		return storeError("acknowledge alert", err)
	}
	if !found {
		logger.DebugCtx(ctx, "Acknowledge ignored, alert not found", zap.String("alert_id", id))
	}
	return nil
}
