package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-entry/internal/domain/product"
)

const (
	listProductsSQL = `SELECT sku, name, description, price, in_stock
		FROM products ORDER BY sku`

	getProductBySKUSQL = `SELECT sku, name, description, price, in_stock
		FROM products WHERE sku = $1`

	isInStockSQL = `SELECT in_stock FROM products WHERE sku = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all catalog products ordered by SKU.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetBySKU returns a single product by its SKU.
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductBySKUSQL, sku)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", sku, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", sku, err)
	}
	return &p, nil
}

// IsInStock reports whether the SKU is currently stocked. Unknown SKUs are
// reported as out of stock rather than as an error.
func (r *ProductRepository) IsInStock(ctx context.Context, sku string) (bool, error) {
	var inStock bool
	err := r.pool.QueryRow(ctx, isInStockSQL, sku).Scan(&inStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking stock for %q: %w", sku, err)
	}
	return inStock, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p       product.Product
		inStock bool
	)
	err := row.Scan(&p.SKU, &p.Name, &p.Description, &p.Price, &inStock)
	return p, err
}
