package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no customer exists for the requested ID.
var ErrNotFound = errors.New("customer not found")

// Customer holds the account data needed to finalize an order. Postal code
// and country drive tax resolution; the email address is used by the
// notification worker downstream.
type Customer struct {
	ID         int64
	Email      string
	PostalCode string
	Country    string
}

// Repository defines lookup of customer accounts.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
}
