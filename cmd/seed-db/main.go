// Command seed-db loads the embedded seed data (catalog, test customer, tax
// brackets) into a PostgreSQL database, running migrations first. Safe to
// re-run: every record is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/db"
	"github.com/xenking/order-entry/internal/storage/postgres"
)

type seedFile struct {
	Products []struct {
		SKU         string          `json:"sku"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		InStock     bool            `json:"in_stock"`
	} `json:"products"`
	Customers []struct {
		ID         int64  `json:"id"`
		Email      string `json:"email"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
	} `json:"customers"`
	TaxEntries []struct {
		PostalCode  string          `json:"postal_code"`
		Country     string          `json:"country"`
		Description string          `json:"description"`
		Rate        decimal.Decimal `json:"rate"`
		Position    int             `json:"position"`
	} `json:"tax_entries"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "", "path to seed JSON file (default: embedded seed data)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	data := db.Seed
	if seedPath != "" {
		slog.Info("reading seed file", slog.String("path", seedPath))
		var err error
		if data, err = os.ReadFile(seedPath); err != nil {
			return errors.Wrap(err, "read seed file")
		}
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCustomers(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	if err := seedTaxEntries(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed tax entries")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	slog.Info("upserting products", slog.Int("count", len(seed.Products)))

	const q = `
		INSERT INTO products (sku, name, description, price, in_stock)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			in_stock = EXCLUDED.in_stock`

	for _, p := range seed.Products {
		if _, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.Price, p.InStock); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		}

		slog.Info("upserted product", slog.String("sku", p.SKU), slog.String("name", p.Name))
	}

	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	slog.Info("upserting customers", slog.Int("count", len(seed.Customers)))

	const q = `
		INSERT INTO customers (id, email, postal_code, country)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country`

	for _, c := range seed.Customers {
		if _, err := pool.Exec(ctx, q, c.ID, c.Email, c.PostalCode, c.Country); err != nil {
			return errors.Wrapf(err, "upsert customer %d", c.ID)
		}

		slog.Info("upserted customer", slog.Int64("id", c.ID), slog.String("email", c.Email))
	}

	// Keep the sequence ahead of explicitly seeded IDs.
	if len(seed.Customers) > 0 {
		const bump = `SELECT setval('customers_id_seq', (SELECT MAX(id) FROM customers))`
		if _, err := pool.Exec(ctx, bump); err != nil {
			return errors.Wrap(err, "advance customers sequence")
		}
	}

	return nil
}

func seedTaxEntries(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	slog.Info("replacing tax entries", slog.Int("count", len(seed.TaxEntries)))

	const q = `
		INSERT INTO tax_entries (postal_code, country, description, rate, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (postal_code, country, description) DO UPDATE SET
			rate = EXCLUDED.rate,
			position = EXCLUDED.position`

	for _, e := range seed.TaxEntries {
		if _, err := pool.Exec(ctx, q, e.PostalCode, e.Country, e.Description, e.Rate, e.Position); err != nil {
			return errors.Wrapf(err, "upsert tax entry %s/%s %s", e.Country, e.PostalCode, e.Description)
		}

		slog.Info("upserted tax entry",
			slog.String("postal_code", e.PostalCode),
			slog.String("description", e.Description),
			slog.String("rate", e.Rate.String()))
	}

	return nil
}
