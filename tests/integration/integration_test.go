//go:build integration

// Package integration exercises the storage adapters and the HTTP surface
// against a real PostgreSQL instance started with testcontainers. Run with:
//
//	go test -tags integration ./tests/integration/
package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/order-entry/internal/storage/postgres"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("orders"),
		tcpostgres.WithPassword("orders"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("connection string: %v", err)
	}

	pool, err = postgres.NewPool(ctx, connStr)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	code := m.Run()

	pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

// resetDB truncates all tables so each test starts from a clean slate.
func resetDB(t *testing.T) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`TRUNCATE orders, tax_entries, customers, products RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("reset database: %v", err)
	}
}

// seedCatalog inserts the standard fixture: a stocked catalog, one customer,
// and the two-bracket tax table for that customer's location.
func seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	products := []struct {
		sku, name, price string
		inStock          bool
	}{
		{"1-1989-5", "Lamp", "24.99", true},
		{"1-1989-6", "Fan", "389.99", true},
		{"1-2032-89", "Photo Album", "24.49", true},
		{"2-0001-43", "240 Grit Sandpaper", "15.16", true},
		{"3-2000-14", "Leather Couch", "659.93", true},
		{"4-0110-07", "Desk Organizer", "12.40", false},
	}
	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (sku, name, description, price, in_stock) VALUES ($1, $2, '', $3, $4)`,
			p.sku, p.name, p.price, p.inStock)
		if err != nil {
			t.Fatalf("seed product %s: %v", p.sku, err)
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO customers (email, postal_code, country) VALUES ('test@test.com', '98101', 'US')`)
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	taxes := []struct {
		description, rate string
		position          int
	}{
		{"State Tax", "5.6", 0},
		{"Federal Tax", "8.2", 1},
	}
	for _, e := range taxes {
		_, err := pool.Exec(ctx,
			`INSERT INTO tax_entries (postal_code, country, description, rate, position)
			 VALUES ('98101', 'US', $1, $2, $3)`,
			e.description, e.rate, e.position)
		if err != nil {
			t.Fatalf("seed tax entry %s: %v", e.description, err)
		}
	}
}
