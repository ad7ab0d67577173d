package repository

import (
	"context"
	"errors"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const unitColumns = `
	id, name, address_line1, COALESCE(address_line2, ''), city, state, postal_code,
	monthly_rent, bedrooms, bathrooms, square_feet, status, COALESCE(notes, ''),
	created_at, updated_at`

// PostgresRentalUnitRepository implements RentalUnitRepository using PostgreSQL
type PostgresRentalUnitRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRentalUnitRepository creates a new PostgresRentalUnitRepository
func NewPostgresRentalUnitRepository(pool *pgxpool.Pool) *PostgresRentalUnitRepository {
	return &PostgresRentalUnitRepository{pool: pool}
}

// Create creates a new unit
func (r *PostgresRentalUnitRepository) Create(ctx context.Context, u *domain.RentalUnit) error {
	query := `
		INSERT INTO rental_units (id, name, address_line1, address_line2, city, state, postal_code,
			monthly_rent, bedrooms, bathrooms, square_feet, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.AddressLine1,
		nullStringOrValue(u.AddressLine2),
		u.City,
		u.State,
		u.PostalCode,
		u.MonthlyRent,
		u.Bedrooms,
		u.Bathrooms,
		u.SquareFeet,
		string(u.Status),
		nullStringOrValue(u.Notes),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

// GetByID retrieves a unit by ID
func (r *PostgresRentalUnitRepository) GetByID(ctx context.Context, id string) (*domain.RentalUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM rental_units WHERE id = $1`
	u, err := scanUnit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// List retrieves all units ordered by name
func (r *PostgresRentalUnitRepository) List(ctx context.Context) ([]*domain.RentalUnit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+unitColumns+` FROM rental_units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]*domain.RentalUnit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// Update updates a unit
func (r *PostgresRentalUnitRepository) Update(ctx context.Context, u *domain.RentalUnit) error {
	query := `
		UPDATE rental_units
		SET name = $2, address_line1 = $3, address_line2 = $4, city = $5, state = $6, postal_code = $7,
			monthly_rent = $8, bedrooms = $9, bathrooms = $10, square_feet = $11, status = $12,
			notes = $13, updated_at = $14
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.AddressLine1,
		nullStringOrValue(u.AddressLine2),
		u.City,
		u.State,
		u.PostalCode,
		u.MonthlyRent,
		u.Bedrooms,
		u.Bathrooms,
		u.SquareFeet,
		string(u.Status),
		nullStringOrValue(u.Notes),
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a unit
func (r *PostgresRentalUnitRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM rental_units WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasContracts checks whether any contract references the unit
func (r *PostgresRentalUnitRepository) HasContracts(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rental_contracts WHERE rental_unit_id = $1)`, id).Scan(&exists)
	return exists, err
}

// Counts returns total and occupied unit counts
func (r *PostgresRentalUnitRepository) Counts(ctx context.Context) (int, int, error) {
	var total, occupied int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $1) FROM rental_units`,
		string(domain.RentalUnitStatusOccupied),
	).Scan(&total, &occupied)
	return total, occupied, err
}

func scanUnit(row pgx.Row) (*domain.RentalUnit, error) {
	u := &domain.RentalUnit{}
	var status string
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.AddressLine1,
		&u.AddressLine2,
		&u.City,
		&u.State,
		&u.PostalCode,
		&u.MonthlyRent,
		&u.Bedrooms,
		&u.Bathrooms,
		&u.SquareFeet,
		&status,
		&u.Notes,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Status = domain.RentalUnitStatus(status)
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
	return u, nil
}
