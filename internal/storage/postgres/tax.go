package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-entry/internal/domain/tax"
)

// Entries are returned in their stored position order; the orchestrator
// applies them exactly as returned, without deduplication or reordering.
const getTaxEntriesSQL = `SELECT description, rate FROM tax_entries
	WHERE postal_code = $1 AND country = $2
	ORDER BY position, id`

var _ tax.Resolver = (*TaxRepository)(nil)

// TaxRepository implements tax.Resolver backed by PostgreSQL.
type TaxRepository struct {
	pool *pgxpool.Pool
}

// NewTaxRepository returns a TaxRepository that uses the given pool.
func NewTaxRepository(pool *pgxpool.Pool) *TaxRepository {
	return &TaxRepository{pool: pool}
}

// Entries returns the tax entries applicable to the given location.
func (r *TaxRepository) Entries(ctx context.Context, postalCode, country string) ([]tax.Entry, error) {
	rows, err := r.pool.Query(ctx, getTaxEntriesSQL, postalCode, country)
	if err != nil {
		return nil, fmt.Errorf("getting tax entries for %q/%q: %w", postalCode, country, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (tax.Entry, error) {
		var e tax.Entry
		err := row.Scan(&e.Description, &e.Rate)
		return e, err
	})
}
