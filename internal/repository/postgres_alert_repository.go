package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAlertRepository implements AlertRepository using PostgreSQL
type PostgresAlertRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAlertRepository creates a new PostgresAlertRepository
func NewPostgresAlertRepository(pool *pgxpool.Pool) *PostgresAlertRepository {
	return &PostgresAlertRepository{pool: pool}
}

// ListOverdue selects every non-paid payment due on or before threshold
func (r *PostgresAlertRepository) ListOverdue(ctx context.Context, threshold time.Time) ([]*domain.OverduePayment, error) {
	query := `
		SELECT p.id, p.receipt_number, t.first_name, t.last_name, p.due_date, p.status
		FROM rent_payments p
		JOIN rental_contracts c ON c.id = p.rental_contract_id
		JOIN tenants t ON t.id = c.tenant_id
		WHERE p.status <> $1 AND p.due_date <= $2
		ORDER BY p.due_date
	`
	rows, err := r.pool.Query(ctx, query, string(domain.RentPaymentStatusPaid), threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overdue := make([]*domain.OverduePayment, 0)
	for rows.Next() {
		o := &domain.OverduePayment{}
		var status string
		if err := rows.Scan(&o.PaymentID, &o.ReceiptNumber, &o.TenantFirstName, &o.TenantLastName, &o.DueDate, &status); err != nil {
			return nil, err
		}
		o.Status = domain.RentPaymentStatus(status)
		o.DueDate = o.DueDate.UTC()
		overdue = append(overdue, o)
	}
	return overdue, rows.Err()
}

// HasOpenAlert checks for an unacknowledged alert on the payment
func (r *PostgresAlertRepository) HasOpenAlert(ctx context.Context, paymentID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payment_alerts WHERE rent_payment_id = $1 AND NOT is_acknowledged)`,
		paymentID,
	).Scan(&exists)
	return exists, err
}

// Raise inserts alerts and flips their payments to Late in a single transaction
func (r *PostgresAlertRepository) Raise(ctx context.Context, alerts []*domain.PaymentAlert) ([]*domain.PaymentAlert, error) {
	if len(alerts) == 0 {
		return nil, nil
	}

	raised := make([]*domain.PaymentAlert, 0, len(alerts))
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		raised = raised[:0]
		for _, a := range alerts {
			// a payment recorded as Paid since the overdue listing gets no alert
			result, err := tx.Exec(ctx, `
				INSERT INTO payment_alerts (id, rent_payment_id, message, is_acknowledged, alert_date, created_at, updated_at)
				SELECT $1::uuid, $2::uuid, $3::varchar, $4::boolean, $5::timestamptz, $6::timestamptz, $7::timestamptz
				WHERE EXISTS (SELECT 1 FROM rent_payments WHERE id = $2 AND status <> 'Paid')
				ON CONFLICT DO NOTHING
			`, a.ID, a.RentPaymentID, a.Message, a.IsAcknowledged, a.AlertDate, a.CreatedAt, a.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert alert for payment %s: %w", a.RentPaymentID, err)
			}
			if result.RowsAffected() == 0 {
				continue
			}

			_, err = tx.Exec(ctx,
				`UPDATE rent_payments SET status = $2, updated_at = $3 WHERE id = $1 AND status <> 'Paid'`,
				a.RentPaymentID, string(domain.RentPaymentStatusLate), a.AlertDate,
			)
			if err != nil {
				return fmt.Errorf("mark payment %s late: %w", a.RentPaymentID, err)
			}
			raised = append(raised, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raised, nil
}

// ListActive retrieves unacknowledged alerts, latest first
func (r *PostgresAlertRepository) ListActive(ctx context.Context) ([]*domain.PaymentAlert, error) {
	query := `
		SELECT id, rent_payment_id, message, is_acknowledged, alert_date, created_at, updated_at
		FROM payment_alerts
		WHERE NOT is_acknowledged
		ORDER BY alert_date DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]*domain.PaymentAlert, 0)
	for rows.Next() {
		a := &domain.PaymentAlert{}
		if err := rows.Scan(&a.ID, &a.RentPaymentID, &a.Message, &a.IsAcknowledged, &a.AlertDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.AlertDate, a.CreatedAt, a.UpdatedAt = a.AlertDate.UTC(), a.CreatedAt.UTC(), a.UpdatedAt.UTC()
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Acknowledge closes an alert
func (r *PostgresAlertRepository) Acknowledge(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE payment_alerts SET is_acknowledged = TRUE, updated_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
