package repository

import (
	"context"
	"errors"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tenantColumns = `
	id, first_name, last_name, email, phone_number,
	COALESCE(emergency_contact_name, ''), COALESCE(emergency_contact_phone, ''), COALESCE(notes, ''),
	created_at, updated_at`

// PostgresTenantRepository implements TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTenantRepository creates a new PostgresTenantRepository
func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

// Create creates a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, first_name, last_name, email, phone_number,
			emergency_contact_name, emergency_contact_phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.FirstName,
		t.LastName,
		t.Email,
		t.PhoneNumber,
		nullStringOrValue(t.EmergencyContactName),
		nullStringOrValue(t.EmergencyContactPhone),
		nullStringOrValue(t.Notes),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// List retrieves all tenants ordered by name
func (r *PostgresTenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY last_name, first_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]*domain.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// Update updates a tenant
func (r *PostgresTenantRepository) Update(ctx context.Context, t *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET first_name = $2, last_name = $3, email = $4, phone_number = $5,
			emergency_contact_name = $6, emergency_contact_phone = $7, notes = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		t.ID,
		t.FirstName,
		t.LastName,
		t.Email,
		t.PhoneNumber,
		nullStringOrValue(t.EmergencyContactName),
		nullStringOrValue(t.EmergencyContactPhone),
		nullStringOrValue(t.Notes),
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a tenant
func (r *PostgresTenantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasContracts checks whether any contract references the tenant
func (r *PostgresTenantRepository) HasContracts(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rental_contracts WHERE tenant_id = $1)`, id).Scan(&exists)
	return exists, err
}

// Count returns the number of tenants
func (r *PostgresTenantRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n)
	return n, err
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := row.Scan(
		&t.ID,
		&t.FirstName,
		&t.LastName,
		&t.Email,
		&t.PhoneNumber,
		&t.EmergencyContactName,
		&t.EmergencyContactPhone,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return t, nil
}
