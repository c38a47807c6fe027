package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. The SKU is the
// unique identifier; name and description are display-only.
type Product struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
}

// StockChecker reports whether a SKU is currently in stock. Implementations
// must be pure queries with no side effects visible to the caller.
type StockChecker interface {
	IsInStock(ctx context.Context, sku string) (bool, error)
}

// Repository defines read operations for the product catalog.
type Repository interface {
	StockChecker
	List(ctx context.Context) ([]Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
}
