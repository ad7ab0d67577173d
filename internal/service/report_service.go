package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/cache"
	"github.com/gtemgoua/property-manager-app/internal/document"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/repository"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default look-back windows when the caller omits from
const (
	DashboardMonths = 12
	ExportMonths    = 3
)

// ReportServiceConfig holds the collaborators of the report service
type ReportServiceConfig struct {
	TenantRepo   repository.TenantRepository
	UnitRepo     repository.RentalUnitRepository
	ContractRepo repository.ContractRepository
	PaymentRepo  repository.PaymentRepository
	DocumentRepo repository.DocumentRepository
	Renderer     document.Renderer
	Dashboard    cache.DashboardCache
}

// reportService implements the ReportService interface
type reportService struct {
	tenantRepo   repository.TenantRepository
	unitRepo     repository.RentalUnitRepository
	contractRepo repository.ContractRepository
	paymentRepo  repository.PaymentRepository
	documentRepo repository.DocumentRepository
	renderer     document.Renderer
	dashboard    cache.DashboardCache
	now          func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(cfg *ReportServiceConfig) ReportService {
	s := &reportService{
		tenantRepo:   cfg.TenantRepo,
		unitRepo:     cfg.UnitRepo,
		contractRepo: cfg.ContractRepo,
		paymentRepo:  cfg.PaymentRepo,
		documentRepo: cfg.DocumentRepo,
		renderer:     cfg.Renderer,
		dashboard:    cfg.Dashboard,
		now:          time.Now,
	}
	if s.dashboard == nil {
		s.dashboard = cache.NoopDashboardCache{}
	}
	return s
}

func (s *reportService) today() time.Time {
	return domain.DateOnly(s.now())
}

// GetDashboard computes portfolio metrics for [from, to], served from cache when fresh
func (s *reportService) GetDashboard(ctx context.Context, fromQ, toQ *time.Time) (*domain.DashboardMetrics, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.report.dashboard")
	defer span.End()

	from, to := domain.DefaultRange(fromQ, toQ, DashboardMonths, s.today())
	if m, ok := s.dashboard.Get(ctx, from, to); ok {
		return m, nil
	}

	tenants, err := s.tenantRepo.Count(ctx)
	if err != nil {
		return nil, storeError("count tenants", err)
	}
	units, occupied, err := s.unitRepo.Counts(ctx)
	if err != nil {
		return nil, storeError("count units", err)
	}
	payments, err := s.paymentRepo.ListDueBetween(ctx, from, to, nil)
	if err != nil {
		return nil, storeError("list payments", err)
	}
	contracts, err := s.contractRepo.ListOverlapping(ctx, from, to)
	if err != nil {
		return nil, storeError("list contracts", err)
	}

	m := &domain.DashboardMetrics{
		TotalTenants:  tenants,
		TotalUnits:    units,
		OccupiedUnits: occupied,
		VacantUnits:   units - occupied,
	}
	m.MonthlyRecurringRevenue, m.MonthlyCollected = monthlyTotals(payments, s.now())
	m.MonthlyOutstanding = m.MonthlyRecurringRevenue.Sub(m.MonthlyCollected)
	m.RentCollection = rentCollection(payments)
	m.Occupancy = occupancy(contracts, units)

	s.dashboard.Set(ctx, from, to, m)
	return m, nil
}

// monthlyTotals sums amount due of payments due in now's month and amount paid
// of payments paid in now's month
func monthlyTotals(payments []*domain.PaymentDetail, now time.Time) (decimal.Decimal, decimal.Decimal) {
	start, end := domain.MonthRange(now)
	inMonth := func(t time.Time) bool {
		return !t.Before(start) && t.Before(end)
	}

	due, collected := decimal.Zero, decimal.Zero
	for _, p := range payments {
		if inMonth(p.DueDate) {
			due = due.Add(p.AmountDue)
		}
		if p.PaidDate != nil && inMonth(*p.PaidDate) {
			collected = collected.Add(p.AmountPaid)
		}
	}
	return due, collected
}

type yearMonth struct {
	year  int
	month int
}

func (k yearMonth) less(o yearMonth) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

func keyOf(t time.Time) yearMonth {
	t = t.UTC()
	return yearMonth{year: t.Year(), month: int(t.Month())}
}

func rentCollection(payments []*domain.PaymentDetail) []domain.RentCollectionChartPoint {
	groups := make(map[yearMonth]*domain.RentCollectionChartPoint)
	for _, p := range payments {
		k := keyOf(p.DueDate)
		point, ok := groups[k]
		if !ok {
			point = &domain.RentCollectionChartPoint{Year: k.year, Month: k.month, AmountDue: decimal.Zero, AmountPaid: decimal.Zero}
			groups[k] = point
		}
		point.AmountDue = point.AmountDue.Add(p.AmountDue)
		point.AmountPaid = point.AmountPaid.Add(p.AmountPaid)
	}

	out := make([]domain.RentCollectionChartPoint, 0, len(groups))
	for _, point := range groups {
		out = append(out, *point)
	}
	sort.Slice(out, func(i, j int) bool {
		return yearMonth{out[i].Year, out[i].Month}.less(yearMonth{out[j].Year, out[j].Month})
	})
	return out
}

// occupancy groups contracts by start month; vacant is measured against all units
func occupancy(contracts []*domain.RentalContract, totalUnits int) []domain.OccupancyChartPoint {
	active := make(map[yearMonth]int)
	for _, c := range contracts {
		k := keyOf(c.StartDate)
		if _, ok := active[k]; !ok {
			active[k] = 0
		}
		if c.Status == domain.ContractStatusActive {
			active[k]++
		}
	}

	out := make([]domain.OccupancyChartPoint, 0, len(active))
	for k, n := range active {
		out = append(out, domain.OccupancyChartPoint{
			Year:          k.year,
			Month:         k.month,
			OccupiedUnits: n,
			VacantUnits:   totalUnits - n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return yearMonth{out[i].Year, out[i].Month}.less(yearMonth{out[j].Year, out[j].Month})
	})
	return out
}

// ExportPaymentsExcel renders payments due in the range as a workbook
func (s *reportService) ExportPaymentsExcel(ctx context.Context, fromQ, toQ *time.Time, currency *domain.Currency) ([]byte, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.report.excel")
	defer span.End()

	from, to := domain.DefaultRange(fromQ, toQ, ExportMonths, s.today())
	payments, err := s.paymentRepo.ListDueBetween(ctx, from, to, currency)
	if err != nil {
		return nil, "", storeError("list payments", err)
	}
	content, err := s.renderer.RenderPaymentsSpreadsheet(ctx, payments)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, "", storeError("render payments workbook", err)
	}

	name := reportFileName(from, to, currency, "xlsx")
	s.keepReport(ctx, name, domain.ContentTypeXLSX, content, from, to)
	return content, name, nil
}

// ExportPaymentsPDF renders payments due in the range with totals per currency
func (s *reportService) ExportPaymentsPDF(ctx context.Context, fromQ, toQ *time.Time, currency *domain.Currency) ([]byte, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.report.pdf")
	defer span.End()

	from, to := domain.DefaultRange(fromQ, toQ, ExportMonths, s.today())
	payments, err := s.paymentRepo.ListDueBetween(ctx, from, to, currency)
	if err != nil {
		return nil, "", storeError("list payments", err)
	}
	content, err := s.renderer.RenderPaymentsReport(ctx, payments, from, to)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		logger.WarnCtx(ctx, "Payments PDF generation failed",
			zap.Time("from", from), zap.Time("to", to), zap.Error(err))
		return nil, "", storeError("render payments report", err)
	}

	name := reportFileName(from, to, currency, "pdf")
	s.keepReport(ctx, name, domain.ContentTypePDF, content, from, to)
	return content, name, nil
}

// keepReport stores a copy of an export; a failure does not fail the export
func (s *reportService) keepReport(ctx context.Context, name, contentType string, content []byte, from, to time.Time) {
	if s.documentRepo == nil {
		return
	}
	doc := domain.NewReportLog(name, contentType, content, from, to, s.now())
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		logger.WarnCtx(ctx, "Failed to store report copy", zap.String("file_name", name), zap.Error(err))
	}
}

// reportFileName returns payments-YYYYMMDD-YYYYMMDD[-CUR].ext
func reportFileName(from, to time.Time, currency *domain.Currency, ext string) string {
	suffix := ""
	if currency != nil {
		suffix = "-" + currency.Code()
	}
	return fmt.Sprintf("payments-%s-%s%s.%s", from.Format("20060102"), to.Format("20060102"), suffix, ext)
}
