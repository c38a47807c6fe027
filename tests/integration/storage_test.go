//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/storage/postgres"
)

func TestProductRepository(t *testing.T) {
	resetDB(t)
	seedCatalog(t)

	ctx := context.Background()
	repo := postgres.NewProductRepository(pool)

	t.Run("IsInStock", func(t *testing.T) {
		inStock, err := repo.IsInStock(ctx, "1-1989-5")
		require.NoError(t, err)
		assert.True(t, inStock)

		inStock, err = repo.IsInStock(ctx, "4-0110-07")
		require.NoError(t, err)
		assert.False(t, inStock, "seeded as out of stock")

		inStock, err = repo.IsInStock(ctx, "no-such-sku")
		require.NoError(t, err)
		assert.False(t, inStock, "unknown SKU counts as out of stock")
	})

	t.Run("GetBySKU", func(t *testing.T) {
		p, err := repo.GetBySKU(ctx, "3-2000-14")
		require.NoError(t, err)
		assert.Equal(t, "Leather Couch", p.Name)
		assert.True(t, decimal.RequireFromString("659.93").Equal(p.Price))

		_, err = repo.GetBySKU(ctx, "no-such-sku")
		assert.True(t, errors.Is(err, product.ErrNotFound))
	})

	t.Run("List", func(t *testing.T) {
		products, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 6)
	})
}

func TestCustomerRepository(t *testing.T) {
	resetDB(t)
	seedCatalog(t)

	ctx := context.Background()
	repo := postgres.NewCustomerRepository(pool)

	c, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", c.Email)
	assert.Equal(t, "98101", c.PostalCode)
	assert.Equal(t, "US", c.Country)

	_, err = repo.Get(ctx, 999)
	assert.True(t, errors.Is(err, customer.ErrNotFound))
}

func TestTaxRepository_OrderedByPosition(t *testing.T) {
	resetDB(t)
	seedCatalog(t)

	repo := postgres.NewTaxRepository(pool)

	entries, err := repo.Entries(context.Background(), "98101", "US")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "State Tax", entries[0].Description)
	assert.True(t, decimal.RequireFromString("5.6").Equal(entries[0].Rate))
	assert.Equal(t, "Federal Tax", entries[1].Description)
	assert.True(t, decimal.RequireFromString("8.2").Equal(entries[1].Rate))

	entries, err = repo.Entries(context.Background(), "00000", "US")
	require.NoError(t, err)
	assert.Empty(t, entries, "unknown location has no tax entries")
}

func TestFulfillmentService(t *testing.T) {
	resetDB(t)
	seedCatalog(t)

	ctx := context.Background()
	svc := postgres.NewFulfillmentService(pool)

	customerID := int64(1)
	o := &order.Order{
		CustomerID: &customerID,
		Items: []order.Item{{
			Product: product.Product{
				SKU:   "1-1989-5",
				Name:  "Lamp",
				Price: decimal.RequireFromString("24.99"),
			},
			Quantity: decimal.NewFromInt(2),
		}},
	}

	first, err := svc.Fulfill(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.OrderID)
	assert.Equal(t, customerID, first.CustomerID)
	assert.Len(t, first.OrderNumber, 8)

	second, err := svc.Fulfill(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.OrderID, "order IDs come from the sequence")
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)

	var items string
	err = pool.QueryRow(ctx, `SELECT items::text FROM orders WHERE id = $1`, first.OrderID).Scan(&items)
	require.NoError(t, err)
	assert.Contains(t, items, "1-1989-5", "accepted items are persisted")
}
