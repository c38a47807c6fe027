// Command stock-ingest reconciles the catalog's stock flags against gzipped
// warehouse inventory feeds. Each feed lists one SKU per line; feeds run to
// hundreds of millions of lines, so they are indexed with bloom filters
// instead of being held in memory. A catalog SKU is marked in stock when it
// appears in at least -min-feeds feeds, and out of stock otherwise.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-entry/internal/storage/postgres"
)

const (
	bloomCapacity = 200_000_000
	bloomFPR      = 0.0001
	progressEvery = 10_000_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
		minFeeds    int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz warehouse feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&minFeeds, "min-feeds", 1, "feeds a SKU must appear in to count as stocked")
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

	if err := run(ctx, dataDir, databaseURL, minFeeds); err != nil {
		slog.Error("stock ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("stock ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, minFeeds int) error {
	feeds, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feeds")
	}
	if len(feeds) == 0 {
		return errors.Errorf("no *.gz feeds found in %s", dataDir)
	}
	sort.Strings(feeds)

	slog.Info("indexing warehouse feeds", slog.Int("feeds", len(feeds)))

	filters, err := buildFeedFilters(ctx, feeds)
	if err != nil {
		return errors.Wrap(err, "index feeds")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	skus, err := catalogSKUs(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "load catalog SKUs")
	}

	stocked := make([]string, 0, len(skus))
	for _, sku := range skus {
		hits := 0
		for _, f := range filters {
			if f.TestString(sku) {
				hits++
			}
		}
		if hits >= minFeeds {
			stocked = append(stocked, sku)
		}
	}

	slog.Info("reconciling stock flags",
		slog.Int("catalog", len(skus)),
		slog.Int("stocked", len(stocked)),
	)

	if err := updateStockFlags(ctx, pool, stocked); err != nil {
		return errors.Wrap(err, "update stock flags")
	}

	return nil
}

// buildFeedFilters builds one bloom filter per feed file, concurrently.
func buildFeedFilters(ctx context.Context, feeds []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(feeds))

	g, ctx := errgroup.WithContext(ctx)
	for i, feed := range feeds {
		g.Go(indexFeed(ctx, i, feed, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func indexFeed(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(sku string) {
			if sku == "" {
				return
			}
			filter.AddString(sku)
			count++
			if count%progressEvery == 0 {
				slog.Info("index progress",
					slog.String("feed", filepath.Base(path)),
					slog.Uint64("skus", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "index feed %s", path)
		}

		slog.Info("feed indexed",
			slog.String("feed", filepath.Base(path)),
			slog.Uint64("total_skus", count),
		)

		filters[idx] = filter
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

func catalogSKUs(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, `SELECT sku FROM products ORDER BY sku`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}

	skus, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "collect SKUs")
	}

	return skus, nil
}

// updateStockFlags flips every catalog row's in_stock flag in one
// transaction so readers never observe a half-reconciled catalog.
func updateStockFlags(ctx context.Context, pool *pgxpool.Pool, stocked []string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE products SET in_stock = FALSE`); err != nil {
		return errors.Wrap(err, "clear stock flags")
	}
	if _, err := tx.Exec(ctx,
		`UPDATE products SET in_stock = TRUE WHERE sku = ANY($1)`, stocked,
	); err != nil {
		return errors.Wrap(err, "set stock flags")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}

	return nil
}
