package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contractColumns = `
	c.id, c.tenant_id, c.rental_unit_id, c.start_date, c.end_date, c.monthly_rent, c.deposit_amount,
	c.currency, c.payment_due_day, c.payment_schedule, c.status, COALESCE(c.notes, ''),
	c.created_at, c.updated_at`

const contractDetailQuery = `
	SELECT ` + contractColumns + `, t.first_name || ' ' || t.last_name, u.name
	FROM rental_contracts c
	JOIN tenants t ON t.id = c.tenant_id
	JOIN rental_units u ON u.id = c.rental_unit_id`

// PostgresContractRepository implements ContractRepository using PostgreSQL
type PostgresContractRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresContractRepository creates a new PostgresContractRepository
func NewPostgresContractRepository(pool *pgxpool.Pool) *PostgresContractRepository {
	return &PostgresContractRepository{pool: pool}
}

// Create inserts the contract, occupies the unit and inserts the initial payment atomically
func (r *PostgresContractRepository) Create(ctx context.Context, c *domain.RentalContract, initial *domain.RentPayment) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE rental_units SET status = $2, updated_at = $3
			WHERE id = $1 AND status <> $2
		`, c.RentalUnitID, string(domain.RentalUnitStatusOccupied), c.CreatedAt)
		if err != nil {
			return fmt.Errorf("occupy unit: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrUnitOccupied
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO rental_contracts (id, tenant_id, rental_unit_id, start_date, end_date, monthly_rent,
				deposit_amount, currency, payment_due_day, payment_schedule, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			c.ID,
			c.TenantID,
			c.RentalUnitID,
			c.StartDate,
			c.EndDate,
			c.MonthlyRent,
			c.DepositAmount,
			string(c.Currency),
			c.PaymentDueDay,
			string(c.PaymentSchedule),
			string(c.Status),
			nullStringOrValue(c.Notes),
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert contract: %w", err)
		}

		if initial != nil {
			if err := insertPayment(ctx, tx, initial); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a contract by ID
func (r *PostgresContractRepository) GetByID(ctx context.Context, id string) (*domain.RentalContract, error) {
	query := `SELECT ` + contractColumns + ` FROM rental_contracts c WHERE c.id = $1`
	c := &domain.RentalContract{}
	if err := scanContract(r.pool.QueryRow(ctx, query, id), c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetDetail retrieves a contract with tenant and unit names
func (r *PostgresContractRepository) GetDetail(ctx context.Context, id string) (*domain.ContractDetail, error) {
	d, err := scanContractDetail(r.pool.QueryRow(ctx, contractDetailQuery+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// List retrieves all contracts, newest start date first
func (r *PostgresContractRepository) List(ctx context.Context) ([]*domain.ContractDetail, error) {
	rows, err := r.pool.Query(ctx, contractDetailQuery+` ORDER BY c.start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make([]*domain.ContractDetail, 0)
	for rows.Next() {
		d, err := scanContractDetail(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, d)
	}
	return contracts, rows.Err()
}

// Update overwrites the contract terms
func (r *PostgresContractRepository) Update(ctx context.Context, c *domain.RentalContract) error {
	query := `
		UPDATE rental_contracts
		SET start_date = $2, end_date = $3, monthly_rent = $4, deposit_amount = $5, payment_due_day = $6,
			payment_schedule = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		c.ID,
		c.StartDate,
		c.EndDate,
		c.MonthlyRent,
		c.DepositAmount,
		c.PaymentDueDay,
		string(c.PaymentSchedule),
		string(c.Status),
		nullStringOrValue(c.Notes),
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a contract whose payments are all pending
func (r *PostgresContractRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var unitID string
		err := tx.QueryRow(ctx, `SELECT rental_unit_id FROM rental_contracts WHERE id = $1 FOR UPDATE`, id).Scan(&unitID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var processed bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM rent_payments WHERE rental_contract_id = $1 AND status <> $2)`,
			id, string(domain.RentPaymentStatusPending),
		).Scan(&processed)
		if err != nil {
			return err
		}
		if processed {
			return ErrContractHasProcessed
		}

		if _, err := tx.Exec(ctx, `DELETE FROM rent_payments WHERE rental_contract_id = $1`, id); err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM rental_contracts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete contract: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE rental_units SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status = $3
		`, unitID, string(domain.RentalUnitStatusAvailable), string(domain.RentalUnitStatusOccupied))
		return err
	})
}

// ListOverlapping returns contracts started by to and not ended before from
func (r *PostgresContractRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]*domain.RentalContract, error) {
	query := `SELECT ` + contractColumns + ` FROM rental_contracts c
		WHERE c.start_date <= $2 AND (c.end_date IS NULL OR c.end_date >= $1)
		ORDER BY c.start_date`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make([]*domain.RentalContract, 0)
	for rows.Next() {
		c := &domain.RentalContract{}
		if err := scanContract(rows, c); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func scanContract(row pgx.Row, c *domain.RentalContract, extra ...interface{}) error {
	var currency, schedule, status string
	dest := []interface{}{
		&c.ID,
		&c.TenantID,
		&c.RentalUnitID,
		&c.StartDate,
		&c.EndDate,
		&c.MonthlyRent,
		&c.DepositAmount,
		&currency,
		&c.PaymentDueDay,
		&schedule,
		&status,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	c.Currency = domain.Currency(currency)
	c.PaymentSchedule = domain.PaymentSchedule(schedule)
	c.Status = domain.ContractStatus(status)
	c.StartDate = c.StartDate.UTC()
	if c.EndDate != nil {
		end := c.EndDate.UTC()
		c.EndDate = &end
	}
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	return nil
}

func scanContractDetail(row pgx.Row) (*domain.ContractDetail, error) {
	d := &domain.ContractDetail{}
	if err := scanContract(row, &d.RentalContract, &d.TenantName, &d.RentalUnitName); err != nil {
		return nil, err
	}
	return d, nil
}
