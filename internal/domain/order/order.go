package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/domain/tax"
)

// Order is a customer purchase request as assembled by the caller. It is
// treated as immutable during placement. A nil CustomerID is invalid and
// rejected before any collaborator is contacted.
type Order struct {
	CustomerID *int64
	Items      []Item
}

// Item is a single order line: a product reference and a positive quantity.
// Quantities may be fractional for weight-based goods, so they are decimals.
type Item struct {
	Product  product.Product
	Quantity decimal.Decimal
}

// Confirmation is returned by the fulfillment collaborator once an order is
// accepted. The customer ID may legitimately differ from the original
// order's if fulfillment assigns its own.
type Confirmation struct {
	OrderID     int64
	OrderNumber string
	CustomerID  int64
}

// Summary is the result of a successfully placed order. Items is the
// original order's item sequence, not a copy annotated with computed values.
type Summary struct {
	OrderID           int64
	OrderNumber       string
	CustomerID        int64
	Taxes             []tax.Entry
	NetTotal          decimal.Decimal
	Total             decimal.Decimal
	Items             []Item
	EstimatedDelivery time.Time
}

// Fulfiller submits an accepted order to the downstream fulfillment process.
type Fulfiller interface {
	Fulfill(ctx context.Context, o *Order) (*Confirmation, error)
}

// Notifier dispatches the order confirmation notification. Note the IDs come
// from the Confirmation, not the original order.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, customerID, orderID int64) error
}
