package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	constraintContractDue = "uq_rent_payments_contract_due"
	constraintReceipt     = "uq_rent_payments_receipt"
)

const paymentColumns = `
	p.id, p.rental_contract_id, p.due_date, p.paid_date, p.amount_due, p.amount_paid, p.late_fee,
	p.currency, p.status, p.payment_method, COALESCE(p.reference_number, ''), COALESCE(p.notes, ''),
	p.receipt_number, p.receipt_sent, p.receipt_sent_at, p.created_at, p.updated_at`

const paymentDetailQuery = `
	SELECT ` + paymentColumns + `, t.id, t.first_name, t.last_name, t.email, u.name
	FROM rent_payments p
	JOIN rental_contracts c ON c.id = p.rental_contract_id
	JOIN tenants t ON t.id = c.tenant_id
	JOIN rental_units u ON u.id = c.rental_unit_id`

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func insertPayment(ctx context.Context, db execer, p *domain.RentPayment) error {
	query := `
		INSERT INTO rent_payments (id, rental_contract_id, due_date, paid_date, amount_due, amount_paid, late_fee,
			currency, status, payment_method, reference_number, notes, receipt_number, receipt_sent,
			receipt_sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := db.Exec(ctx, query,
		p.ID,
		p.RentalContractID,
		p.DueDate,
		p.PaidDate,
		p.AmountDue,
		p.AmountPaid,
		p.LateFee,
		string(p.Currency),
		string(p.Status),
		string(p.PaymentMethod),
		nullStringOrValue(p.ReferenceNumber),
		nullStringOrValue(p.Notes),
		p.ReceiptNumber,
		p.ReceiptSent,
		p.ReceiptSentAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapPaymentInsertError(err)
	}
	return nil
}

func mapPaymentInsertError(err error) error {
	if !database.IsUniqueViolation(err) {
		return fmt.Errorf("insert payment: %w", err)
	}
	switch database.ConstraintName(err) {
	case constraintContractDue:
		return ErrDuplicateDueDate
	case constraintReceipt:
		return ErrDuplicateReceipt
	}
	return fmt.Errorf("%w: %v", ErrDuplicate, err)
}

// Create inserts a payment
func (r *PostgresPaymentRepository) Create(ctx context.Context, p *domain.RentPayment) error {
	return insertPayment(ctx, r.pool, p)
}

// GetByID retrieves a payment by ID
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*domain.RentPayment, error) {
	p := &domain.RentPayment{}
	err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM rent_payments p WHERE p.id = $1`, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetDetail retrieves a payment with tenant and unit context
func (r *PostgresPaymentRepository) GetDetail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	d, err := scanPaymentDetail(r.pool.QueryRow(ctx, paymentDetailQuery+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// ExistsForDueDate checks the (contract, due date) uniqueness ahead of an insert
func (r *PostgresPaymentRepository) ExistsForDueDate(ctx context.Context, contractID string, dueDate time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rent_payments WHERE rental_contract_id = $1 AND due_date = $2)`,
		contractID, domain.DateOnly(dueDate),
	).Scan(&exists)
	return exists, err
}

// ListUpcoming retrieves payments in an optional due date range
func (r *PostgresPaymentRepository) ListUpcoming(ctx context.Context, from, to *time.Time) ([]*domain.PaymentDetail, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, fmt.Sprintf("p.due_date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, fmt.Sprintf("p.due_date <= $%d", len(args)))
	}
	query := paymentDetailQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	return r.queryDetails(ctx, query+" ORDER BY p.due_date", args...)
}

// ListByContract retrieves a contract's payments, latest first
func (r *PostgresPaymentRepository) ListByContract(ctx context.Context, contractID string) ([]*domain.PaymentDetail, error) {
	return r.queryDetails(ctx, paymentDetailQuery+` WHERE p.rental_contract_id = $1 ORDER BY p.due_date DESC`, contractID)
}

// ListDueBetween retrieves payments due in [from, to]
func (r *PostgresPaymentRepository) ListDueBetween(ctx context.Context, from, to time.Time, currency *domain.Currency) ([]*domain.PaymentDetail, error) {
	query := paymentDetailQuery + ` WHERE p.due_date >= $1 AND p.due_date <= $2`
	args := []interface{}{from, to}
	if currency != nil {
		query += ` AND p.currency = $3`
		args = append(args, string(*currency))
	}
	return r.queryDetails(ctx, query+` ORDER BY p.due_date`, args...)
}

// Update overwrites the mutable payment fields
func (r *PostgresPaymentRepository) Update(ctx context.Context, p *domain.RentPayment) error {
	query := `
		UPDATE rent_payments
		SET paid_date = $2, amount_paid = $3, late_fee = $4, status = $5, payment_method = $6,
			reference_number = $7, notes = $8, receipt_sent = $9, receipt_sent_at = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.PaidDate,
		p.AmountPaid,
		p.LateFee,
		string(p.Status),
		string(p.PaymentMethod),
		nullStringOrValue(p.ReferenceNumber),
		nullStringOrValue(p.Notes),
		p.ReceiptSent,
		p.ReceiptSentAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkReceiptSent flags the receipt as delivered without touching the recorded amounts
func (r *PostgresPaymentRepository) MarkReceiptSent(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE rent_payments SET receipt_sent = TRUE, receipt_sent_at = $2, updated_at = $2 WHERE id = $1`,
		id, at.UTC(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPaymentRepository) queryDetails(ctx context.Context, query string, args ...interface{}) ([]*domain.PaymentDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*domain.PaymentDetail, 0)
	for rows.Next() {
		d, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, d)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row, p *domain.RentPayment, extra ...interface{}) error {
	var currency, status, method string
	dest := []interface{}{
		&p.ID,
		&p.RentalContractID,
		&p.DueDate,
		&p.PaidDate,
		&p.AmountDue,
		&p.AmountPaid,
		&p.LateFee,
		&currency,
		&status,
		&method,
		&p.ReferenceNumber,
		&p.Notes,
		&p.ReceiptNumber,
		&p.ReceiptSent,
		&p.ReceiptSentAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	p.Currency = domain.Currency(currency)
	p.Status = domain.RentPaymentStatus(status)
	p.PaymentMethod = domain.PaymentMethod(method)
	p.DueDate = p.DueDate.UTC()
	p.PaidDate = utcPtr(p.PaidDate)
	p.ReceiptSentAt = utcPtr(p.ReceiptSentAt)
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return nil
}

func scanPaymentDetail(row pgx.Row) (*domain.PaymentDetail, error) {
	d := &domain.PaymentDetail{}
	err := scanPayment(row, &d.RentPayment,
		&d.TenantID,
		&d.TenantFirstName,
		&d.TenantLastName,
		&d.TenantEmail,
		&d.RentalUnitName,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
