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

// tenantService implements the TenantService interface
type tenantService struct {
	tenantRepo repository.TenantRepository
	now        func() time.Time
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo repository.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo, now: time.Now}
}

// CreateTenant creates a new tenant
func (s *tenantService) CreateTenant(ctx context.Context, req *dto.TenantRequest) (*domain.Tenant, error) {
	tenant := req.ToTenant()
	tenant.Normalize()
	if err := tenant.Validate(); err != nil {
		return nil, validationError(err)
	}

	now := s.now().UTC()
	tenant.ID = uuid.New().String()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, storeError("create tenant", err)
	}
	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *tenantService) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get tenant", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

func (s *tenantService) ListTenants(ctx context.Context) ([]*domain.Tenant, error) {
	tenants, err := s.tenantRepo.List(ctx)
	if err != nil {
		return nil, storeError("list tenants", err)
	}
	return tenants, nil
}

// UpdateTenant overwrites the tenant's contact details
func (s *tenantService) UpdateTenant(ctx context.Context, id string, req *dto.TenantRequest) (*domain.Tenant, error) {
	existing, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant := req.ToTenant()
	tenant.Normalize()
	if err := tenant.Validate(); err != nil {
		return nil, validationError(err)
	}
	tenant.ID = existing.ID
	tenant.CreatedAt = existing.CreatedAt
	tenant.UpdatedAt = s.now().UTC()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, storeError("update tenant", err)
	}
	return tenant, nil
}

// DeleteTenant deletes a tenant with no contracts
func (s *tenantService) DeleteTenant(ctx context.Context, id string) error {
	if _, err := s.GetTenant(ctx, id); err != nil {
		return err
	}

	hasContracts, err := s.tenantRepo.HasContracts(ctx, id)
	if err != nil {
		return storeError("check tenant contracts", err)
	}
	if hasContracts {
		return ErrTenantHasContracts
	}

	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return storeError("delete tenant", err)
	}
	return nil
}
