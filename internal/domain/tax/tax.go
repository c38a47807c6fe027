package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Entry is a named tax bracket with a fractional rate.
type Entry struct {
	Description string
	Rate        decimal.Decimal
}

// Resolver returns the tax entries applicable to a location. The returned
// sequence is used as-is: no deduplication, no reordering.
type Resolver interface {
	Entries(ctx context.Context, postalCode, country string) ([]Entry, error)
}
