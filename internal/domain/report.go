package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardMetrics summarises the portfolio for a date range
type DashboardMetrics struct {
	TotalTenants            int                        `json:"total_tenants"`
	TotalUnits              int                        `json:"total_units"`
	OccupiedUnits           int                        `json:"occupied_units"`
	VacantUnits             int                        `json:"vacant_units"`
	MonthlyRecurringRevenue decimal.Decimal            `json:"monthly_recurring_revenue"`
	MonthlyCollected        decimal.Decimal            `json:"monthly_collected"`
	MonthlyOutstanding      decimal.Decimal            `json:"monthly_outstanding"`
	RentCollection          []RentCollectionChartPoint `json:"rent_collection"`
	Occupancy               []OccupancyChartPoint      `json:"occupancy"`
}

// RentCollectionChartPoint aggregates payments due in one month
type RentCollectionChartPoint struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// OccupancyChartPoint counts active contracts started in one month
type OccupancyChartPoint struct {
	Year          int `json:"year"`
	Month         int `json:"month"`
	OccupiedUnits int `json:"occupied_units"`
	VacantUnits   int `json:"vacant_units"`
}

// MonthRange returns the first day of t's month and the first day of the next
func MonthRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DefaultRange resolves optional bounds, defaulting to the given number of months back from now
func DefaultRange(from, to *time.Time, months int, now time.Time) (time.Time, time.Time) {
	end := now.UTC()
	if to != nil {
		end = to.UTC()
	}
	start := end.AddDate(0, -months, 0)
	if from != nil {
		start = from.UTC()
	}
	return start, end
}
