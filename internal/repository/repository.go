package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
)

// Store errors. Lookups return nil, nil for a missing row.
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicate            = errors.New("duplicate record")
	ErrDuplicateDueDate     = fmt.Errorf("%w: payment already exists for contract and due date", ErrDuplicate)
	ErrDuplicateReceipt     = fmt.Errorf("%w: receipt number already in use", ErrDuplicate)
	ErrUnitOccupied         = errors.New("rental unit already occupied")
	ErrContractHasProcessed = errors.New("contract has processed payments")
)

// TenantRepository defines data access for tenants
type TenantRepository interface {
	// Create inserts a tenant
	Create(ctx context.Context, tenant *domain.Tenant) error
	// GetByID returns nil when the tenant does not exist
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	// List returns tenants ordered by last name, first name
	List(ctx context.Context) ([]*domain.Tenant, error)
	// Update overwrites a tenant
	Update(ctx context.Context, tenant *domain.Tenant) error
	// Delete removes a tenant
	Delete(ctx context.Context, id string) error
	// HasContracts reports whether any contract references the tenant
	HasContracts(ctx context.Context, id string) (bool, error)
	// Count returns the number of tenants
	Count(ctx context.Context) (int, error)
}

// RentalUnitRepository defines data access for units
type RentalUnitRepository interface {
	Create(ctx context.Context, unit *domain.RentalUnit) error
	GetByID(ctx context.Context, id string) (*domain.RentalUnit, error)
	// List returns units ordered by name
	List(ctx context.Context) ([]*domain.RentalUnit, error)
	Update(ctx context.Context, unit *domain.RentalUnit) error
	Delete(ctx context.Context, id string) error
	HasContracts(ctx context.Context, id string) (bool, error)
	// Counts returns the total number of units and how many are occupied
	Counts(ctx context.Context) (total, occupied int, err error)
}

// ContractRepository defines data access for contracts
type ContractRepository interface {
	// Create inserts the contract, marks its unit Occupied and inserts the initial
	// payment when one is given, all in one transaction.
	// Returns ErrUnitOccupied if the unit is already occupied.
	Create(ctx context.Context, contract *domain.RentalContract, initial *domain.RentPayment) error
	GetByID(ctx context.Context, id string) (*domain.RentalContract, error)
	GetDetail(ctx context.Context, id string) (*domain.ContractDetail, error)
	// List returns contracts ordered by start date, newest first
	List(ctx context.Context) ([]*domain.ContractDetail, error)
	Update(ctx context.Context, contract *domain.RentalContract) error
	// Delete removes the contract and its payments and frees the unit.
	// Returns ErrContractHasProcessed when any payment is not Pending.
	Delete(ctx context.Context, id string) error
	// ListOverlapping returns contracts active at some point in [from, to]
	ListOverlapping(ctx context.Context, from, to time.Time) ([]*domain.RentalContract, error)
}

// PaymentRepository defines data access for rent payments
type PaymentRepository interface {
	// Create inserts a payment. Returns ErrDuplicateDueDate or ErrDuplicateReceipt
	// when a uniqueness constraint rejects it.
	Create(ctx context.Context, payment *domain.RentPayment) error
	GetByID(ctx context.Context, id string) (*domain.RentPayment, error)
	GetDetail(ctx context.Context, id string) (*domain.PaymentDetail, error)
	// ExistsForDueDate reports whether the contract already has a payment due on dueDate
	ExistsForDueDate(ctx context.Context, contractID string, dueDate time.Time) (bool, error)
	// ListUpcoming returns payments due in the optional range ordered by due date
	ListUpcoming(ctx context.Context, from, to *time.Time) ([]*domain.PaymentDetail, error)
	// ListByContract returns a contract's payments, latest due date first
	ListByContract(ctx context.Context, contractID string) ([]*domain.PaymentDetail, error)
	// ListDueBetween returns payments due in [from, to], optionally of one currency, ordered by due date
	ListDueBetween(ctx context.Context, from, to time.Time, currency *domain.Currency) ([]*domain.PaymentDetail, error)
	// Update overwrites the mutable payment fields
	Update(ctx context.Context, payment *domain.RentPayment) error
	// MarkReceiptSent stamps only the receipt delivery columns
	MarkReceiptSent(ctx context.Context, id string, at time.Time) error
}

// AlertRepository defines data access for overdue alerts
type AlertRepository interface {
	// ListOverdue returns non-paid payments due on or before threshold
	ListOverdue(ctx context.Context, threshold time.Time) ([]*domain.OverduePayment, error)
	// HasOpenAlert reports whether an unacknowledged alert exists for the payment
	HasOpenAlert(ctx context.Context, paymentID string) (bool, error)
	// Raise inserts the alerts and marks their payments Late in one transaction.
	// Alerts that lose a race against an existing open alert are skipped.
	// Returns the alerts actually inserted.
	Raise(ctx context.Context, alerts []*domain.PaymentAlert) ([]*domain.PaymentAlert, error)
	// ListActive returns unacknowledged alerts, latest first
	ListActive(ctx context.Context) ([]*domain.PaymentAlert, error)
	// Acknowledge closes an alert; reports false when it does not exist
	Acknowledge(ctx context.Context, id string, at time.Time) (bool, error)
}

// DocumentRepository stores generated documents
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.DocumentLog) error
	ListByPayment(ctx context.Context, paymentID string) ([]*domain.DocumentLog, error)
}

// nullStringOrValue returns nil for empty strings, otherwise returns the value
func nullStringOrValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
