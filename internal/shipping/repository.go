package shipping

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
)

// Repository is the Postgres-backed Store. It expects search_path to point
// at the shipping schema.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, status domain.ShippingStatus, dueDate time.Time) (string, error) {
	id := uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shippings (id, shipping_type, product_ids, order_id, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, id, shippingType, pq.Array(productIDs), orderID, status, dueDate)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (r *Repository) GetShipping(ctx context.Context, id string) (*domain.Shipping, error) {
	shipping := &domain.Shipping{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, shipping_type, product_ids, order_id, status, due_date, created_at
		FROM shippings
		WHERE id = $1
	`, id).Scan(
		&shipping.ID,
		&shipping.Type,
		pq.Array(&shipping.ProductIDs),
		&shipping.OrderID,
		&shipping.Status,
		&shipping.DueDate,
		&shipping.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrShippingNotFound
		}
		return nil, err
	}

	return shipping, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.ShippingStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE shippings SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrShippingNotFound
	}

	return nil
}
