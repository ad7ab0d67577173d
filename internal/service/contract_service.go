package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/internal/cache"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/events"
	"github.com/gtemgoua/property-manager-app/internal/repository"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"go.uber.org/zap"
)

// contractService implements the ContractService interface
type contractService struct {
	contractRepo repository.ContractRepository
	tenantRepo   repository.TenantRepository
	unitRepo     repository.RentalUnitRepository
	publisher    events.Publisher
	dashboard    cache.DashboardCache
	now          func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo repository.ContractRepository,
	tenantRepo repository.TenantRepository,
	unitRepo repository.RentalUnitRepository,
	publisher events.Publisher,
	dashboard cache.DashboardCache,
) ContractService {
	return &contractService{
		contractRepo: contractRepo,
		tenantRepo:   tenantRepo,
		unitRepo:     unitRepo,
		publisher:    publisher,
		dashboard:    dashboard,
		now:          time.Now,
	}
}

// CreateContract validates the parties, occupies the unit and, for monthly
// contracts, schedules the first payment in the same transaction
func (s *contractService) CreateContract(ctx context.Context, req *dto.CreateRentalContractRequest) (*domain.ContractDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.contract.create")
	defer span.End()

	contract, err := req.ToContract()
	if err != nil {
		return nil, validationError(err)
	}
	if err := contract.Validate(); err != nil {
		return nil, validationError(err)
	}

	tenant, err := s.tenantRepo.GetByID(ctx, contract.TenantID)
	if err != nil {
		return nil, storeError("get tenant", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	unit, err := s.unitRepo.GetByID(ctx, contract.RentalUnitID)
	if err != nil {
		return nil, storeError("get unit", err)
	}
	if unit == nil {
		return nil, ErrUnitNotFound
	}
	if unit.Status == domain.RentalUnitStatusOccupied {
		return nil, ErrUnitOccupied
	}

	now := s.now().UTC()
	contract.ID = uuid.New().String()
	contract.StartDate = domain.DateOnly(contract.StartDate)
	if contract.EndDate != nil {
		end := domain.DateOnly(*contract.EndDate)
		contract.EndDate = &end
	}
	contract.CreatedAt = now
	contract.UpdatedAt = now

	var initial *domain.RentPayment
	if contract.GeneratesInitialPayment() {
		initial, err = domain.NewRentPayment(
			contract.ID,
			domain.FirstDueDate(now, contract.PaymentDueDay),
			contract.MonthlyRent,
			contract.Currency,
			domain.ReceiptGrainDay,
			now,
		)
		if err != nil {
			return nil, validationError(err)
		}
	}

	if err := s.contractRepo.Create(ctx, contract, initial); err != nil {
		telemetry.SetSpanError(ctx, err)
		switch {
		case errors.Is(err, repository.ErrUnitOccupied):
			return nil, ErrUnitOccupied
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicatePayment
		}
		return nil, storeError("create contract", err)
	}

	logger.InfoCtx(ctx, "Contract created",
		zap.String("contract_id", contract.ID),
		zap.String("unit_id", contract.RentalUnitID),
		zap.Bool("initial_payment", initial != nil),
	)
	if initial != nil {
		s.publisher.Publish(ctx, dto.NewPaymentEvent(dto.EventPaymentCreated, initial, logger.ActorFromContext(ctx), now))
	}
	s.dashboard.Invalidate(ctx)

	return &domain.ContractDetail{
		RentalContract: *contract,
		TenantName:     tenant.FullName(),
		RentalUnitName: unit.Name,
	}, nil
}

func (s *contractService) GetContract(ctx context.Context, id string) (*domain.ContractDetail, error) {
	detail, err := s.contractRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	if detail == nil {
		return nil, ErrContractNotFound
	}
	return detail, nil
}

func (s *contractService) ListContracts(ctx context.Context) ([]*domain.ContractDetail, error) {
	contracts, err := s.contractRepo.List(ctx)
	if err != nil {
		return nil, storeError("list contracts", err)
	}
	return contracts, nil
}

// UpdateContract overwrites the contract terms. Tenant, unit and currency are fixed.
func (s *contractService) UpdateContract(ctx context.Context, id string, req *dto.UpdateRentalContractRequest) (*domain.ContractDetail, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	req.Apply(contract)
	contract.StartDate = domain.DateOnly(contract.StartDate)
	if contract.EndDate != nil {
		end := domain.DateOnly(*contract.EndDate)
		contract.EndDate = &end
	}
	if err := contract.Validate(); err != nil {
		return nil, validationError(err)
	}
	contract.UpdatedAt = s.now().UTC()

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, storeError("update contract", err)
	}
	s.dashboard.Invalidate(ctx)
	return s.GetContract(ctx, id)
}

// DeleteContract deletes a contract and its pending payments and frees the unit
func (s *contractService) DeleteContract(ctx context.Context, id string) error {
	if err := s.contractRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrContractNotFound
		case errors.Is(err, repository.ErrContractHasProcessed):
			return ErrContractHasProcessed
		}
		return storeError("delete contract", err)
	}
	logger.InfoCtx(ctx, "Contract deleted", zap.String("contract_id", id))
	s.dashboard.Invalidate(ctx)
	return nil
}
