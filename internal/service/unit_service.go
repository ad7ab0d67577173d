package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/internal/dto"
	"github.com/gtemgoua/property-manager-app/internal/repository"
)

// unitService implements the RentalUnitService interface
type unitService struct {
	unitRepo repository.RentalUnitRepository
	now      func() time.Time
}

// NewRentalUnitService creates a new RentalUnitService
func NewRentalUnitService(unitRepo repository.RentalUnitRepository) RentalUnitService {
	return &unitService{unitRepo: unitRepo, now: time.Now}
}

// CreateUnit creates a unit; new units are Available unless a status is given
func (s *unitService) CreateUnit(ctx context.Context, req *dto.RentalUnitRequest) (*domain.RentalUnit, error) {
	unit := req.ToUnit()
	if err := unit.Validate(); err != nil {
		return nil, validationError(err)
	}

	now := s.now().UTC()
	unit.ID = uuid.New().String()
	unit.CreatedAt = now
	unit.UpdatedAt = now

	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, storeError("create unit", err)
	}
	return unit, nil
}

func (s *unitService) GetUnit(ctx context.Context, id string) (*domain.RentalUnit, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get unit", err)
	}
	if unit == nil {
		return nil, ErrUnitNotFound
	}
	return unit, nil
}

func (s *unitService) ListUnits(ctx context.Context) ([]*domain.RentalUnit, error) {
	units, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, storeError("list units", err)
	}
	return units, nil
}

// UpdateUnit overwrites a unit. An omitted status keeps the current one.
func (s *unitService) UpdateUnit(ctx context.Context, id string, req *dto.RentalUnitRequest) (*domain.RentalUnit, error) {
	existing, err := s.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	unit := req.ToUnit()
	if unit.Status == "" {
		unit.Status = existing.Status
	}
	if err := unit.Validate(); err != nil {
		return nil, validationError(err)
	}
	unit.ID = existing.ID
	unit.CreatedAt = existing.CreatedAt
	unit.UpdatedAt = s.now().UTC()

	if err := s.unitRepo.Update(ctx, unit); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, storeError("update unit", err)
	}
	return unit, nil
}

func (s *unitService) DeleteUnit(ctx context.Context, id string) error {
	if _, err := s.GetUnit(ctx, id); err != nil {
		return err
	}

	hasContracts, err := s.unitRepo.HasContracts(ctx, id)
	if err != nil {
		return storeError("check unit contracts", err)
	}
	if hasContracts {
		return ErrUnitHasContracts
	}

	if err := s.unitRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnitNotFound
		}
		return storeError("delete unit", err)
	}
	return nil
}
