package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/namidia/namidia/internal/model"
)

const productColumns = `id, name, image_url, unit, stock, price, original_price, discount_percent, active`

// ProductRepository reads storefront products
type ProductRepository struct {
	db DBExecutor
}

// NewProductRepository creates a new product repository
func NewProductRepository(db DBExecutor) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetProduct retrieves an active product by ID
func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND active`

	var product model.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetStock returns the live stock of the given products. Inactive or unknown
// products are absent from the map.
func (r *ProductRepository) GetStock(ctx context.Context, ids []string) (map[string]int, error) {
	stock := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return stock, nil
	}

	query := `
		SELECT id, stock
		FROM products
		WHERE id = ANY($1) AND active
	`

	var rows []struct {
		ID    string `db:"id"`
		Stock int    `db:"stock"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get product stock: %w", err)
	}

	for _, row := range rows {
		stock[row.ID] = row.Stock
	}
	return stock, nil
}
