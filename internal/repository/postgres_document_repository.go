package repository

import (
	"context"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements DocumentRepository using PostgreSQL
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository
func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{pool: pool}
}

// Create stores a generated document
func (r *PostgresDocumentRepository) Create(ctx context.Context, d *domain.DocumentLog) error {
	query := `
		INSERT INTO document_logs (id, document_type, file_name, content_type, content, rent_payment_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var metadata interface{}
	if len(d.Metadata) > 0 {
		metadata = []byte(d.Metadata)
	}
	_, err := r.pool.Exec(ctx, query,
		d.ID,
		string(d.DocumentType),
		d.FileName,
		d.ContentType,
		d.Content,
		d.RentPaymentID,
		metadata,
		d.CreatedAt,
	)
	return err
}

// ListByPayment retrieves the documents generated for a payment, newest first
func (r *PostgresDocumentRepository) ListByPayment(ctx context.Context, paymentID string) ([]*domain.DocumentLog, error) {
	query := `
		SELECT id, document_type, file_name, content_type, content, rent_payment_id, metadata, created_at
		FROM document_logs
		WHERE rent_payment_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.DocumentLog, 0)
	for rows.Next() {
		d := &domain.DocumentLog{}
		var docType string
		var metadata []byte
		if err := rows.Scan(&d.ID, &docType, &d.FileName, &d.ContentType, &d.Content, &d.RentPaymentID, &metadata, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.DocumentType = domain.DocumentType(docType)
		d.Metadata = metadata
		d.CreatedAt = d.CreatedAt.UTC()
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
