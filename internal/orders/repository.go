package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/eshop"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository reads catalog entries and records stock deductions. It
// expects search_path to point at the orders schema.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*eshop.Product, error) {
	product := &eshop.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, available_amount
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.Price, &product.AvailableAmount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return product, nil
}

// Deduct removes quantity from a product's availability; the guarded WHERE
// keeps the decrement atomic under concurrent orders.
func (r *ProductRepository) Deduct(ctx context.Context, id string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET available_amount = available_amount - $2
		WHERE id = $1 AND available_amount >= $2
	`, id, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}
