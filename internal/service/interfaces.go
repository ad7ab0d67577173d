package service

import (
	"context"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
)

// TenantService defines the interface for tenant management
type TenantService interface {
	CreateTenant(ctx context.Context, req *dto.TenantRequest) (*domain.Tenant, error)
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	ListTenants(ctx context.Context) ([]*domain.Tenant, error)
	UpdateTenant(ctx context.Context, id string, req *dto.TenantRequest) (*domain.Tenant, error)
	// DeleteTenant fails while contracts reference the tenant
	DeleteTenant(ctx context.Context, id string) error
}

// RentalUnitService defines the interface for unit management
type RentalUnitService interface {
	CreateUnit(ctx context.Context, req *dto.RentalUnitRequest) (*domain.RentalUnit, error)
	GetUnit(ctx context.Context, id string) (*domain.RentalUnit, error)
	ListUnits(ctx context.Context) ([]*domain.RentalUnit, error)
	UpdateUnit(ctx context.Context, id string, req *dto.RentalUnitRequest) (*domain.RentalUnit, error)
	DeleteUnit(ctx context.Context, id string) error
}

// ContractService defines the interface for rental contracts
type ContractService interface {
	// CreateContract occupies the unit and schedules the first monthly payment
	CreateContract(ctx context.Context, req *dto.CreateRentalContractRequest) (*domain.ContractDetail, error)
	GetContract(ctx context.Context, id string) (*domain.ContractDetail, error)
	ListContracts(ctx context.Context) ([]*domain.ContractDetail, error)
	UpdateContract(ctx context.Context, id string, req *dto.UpdateRentalContractRequest) (*domain.ContractDetail, error)
	// DeleteContract removes a contract whose payments are all still pending
	DeleteContract(ctx context.Context, id string) error
}

// PaymentService defines the rent payment lifecycle
type PaymentService interface {
	// CreatePayment adds a pending payment under a contract
	CreatePayment(ctx context.Context, req *dto.CreateRentPaymentRequest) (*domain.PaymentDetail, error)
	// RecordPayment applies money received and recomputes the status
	RecordPayment(ctx context.Context, id string, req *dto.RecordRentPaymentRequest) (*domain.PaymentDetail, error)
	GetPayment(ctx context.Context, id string) (*domain.PaymentDetail, error)
	// GetUpcoming lists payments due in the optional range, earliest first
	GetUpcoming(ctx context.Context, from, to *time.Time) ([]*domain.PaymentDetail, error)
	// GetByContract lists a contract's payments, latest first
	GetByContract(ctx context.Context, contractID string) ([]*domain.PaymentDetail, error)
	// GenerateReceipt renders and stores a receipt PDF
	GenerateReceipt(ctx context.Context, id string) ([]byte, error)
	// SendReceipt emails a receipt for a paid or partially paid payment
	SendReceipt(ctx context.Context, id string, req *dto.SendReceiptRequest) error
	// CreatePaymentIntent starts a card payment for the outstanding balance
	CreatePaymentIntent(ctx context.Context, id string) (*dto.PaymentIntentResponse, error)
	// ConfirmPaymentIntent records a succeeded card payment
	ConfirmPaymentIntent(ctx context.Context, id, intentID string) (*domain.PaymentDetail, error)
}

// AlertService defines the interface for overdue payment alerts
type AlertService interface {
	// GenerateAlerts raises alerts for overdue payments and returns how many were raised
	GenerateAlerts(ctx context.Context) (int, error)
	GetActive(ctx context.Context) ([]*domain.PaymentAlert, error)
	// Acknowledge closes an alert; unknown ids are ignored
	Acknowledge(ctx context.Context, id string) error
}

// ReportService defines the interface for dashboards and exports
type ReportService interface {
	GetDashboard(ctx context.Context, from, to *time.Time) (*domain.DashboardMetrics, error)
	// ExportPaymentsExcel returns the workbook and its file name
	ExportPaymentsExcel(ctx context.Context, from, to *time.Time, currency *domain.Currency) ([]byte, string, error)
	// ExportPaymentsPDF returns the report and its file name
	ExportPaymentsPDF(ctx context.Context, from, to *time.Time, currency *domain.Currency) ([]byte, string, error)
}
