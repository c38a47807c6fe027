package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-entry/internal/domain/order"
)

const fulfillOrderSQL = `INSERT INTO orders (order_number, customer_id, items)
	VALUES ($1, $2, $3)
	RETURNING id`

var _ order.Fulfiller = (*FulfillmentService)(nil)

// FulfillmentService implements order.Fulfiller by persisting the accepted
// order. The order ID is allocated by the database sequence and the order
// number is generated here, so the confirmation's identifiers are
// authoritative over anything the caller supplied.
type FulfillmentService struct {
	pool *pgxpool.Pool
}

// NewFulfillmentService returns a FulfillmentService that uses the given pool.
func NewFulfillmentService(pool *pgxpool.Pool) *FulfillmentService {
	return &FulfillmentService{pool: pool}
}

// Fulfill accepts the order and returns its confirmation. The item sequence
// is serialized to JSON for the JSONB column.
func (s *FulfillmentService) Fulfill(ctx context.Context, o *order.Order) (*order.Confirmation, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}

	number := newOrderNumber()

	var id int64
	err = s.pool.QueryRow(ctx, fulfillOrderSQL, number, *o.CustomerID, itemsJSON).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("fulfilling order %q: %w", number, err)
	}

	return &order.Confirmation{
		OrderID:     id,
		OrderNumber: number,
		CustomerID:  *o.CustomerID,
	}, nil
}

// newOrderNumber produces a short human-readable order number from a UUID.
func newOrderNumber() string {
	u := uuid.New().String()
	return strings.ToUpper(u[:8])
}
