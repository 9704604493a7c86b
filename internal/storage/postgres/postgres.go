// Package postgres implements the catalog stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bazaar-shop/db"
	"github.com/xenking/bazaar-shop/internal/domain/catalog"
)

// querier is the subset of pgx operations shared by pgxpool.Pool and pgx.Tx,
// letting every store run against either the pool or an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewPool creates a pgxpool.Pool for the given connection URL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations applies the embedded migration files in lexical order. The
// statements are idempotent (CREATE ... IF NOT EXISTS), so reruns are safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := fs.Glob(db.Migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		ddl, err := fs.ReadFile(db.Migrations, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}
	return nil
}

var _ catalog.TxRunner = (*Catalog)(nil)

// Catalog is the PostgreSQL-backed Catalog Store. It hands out pool-backed
// stores for single-step operations and runs multi-step units of work inside
// one transaction.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog creates a Catalog on top of the given pool.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// Stores returns pool-backed stores for single-statement operations.
func (c *Catalog) Stores() catalog.Stores {
	return storesFor(c.pool, false)
}

// RunInTx runs fn inside a single transaction. The user and commodity stores
// handed to fn lock rows they load (SELECT ... FOR UPDATE), so concurrent
// units touching the same user or commodity serialize. The transaction is
// rolled back when fn returns an error and committed otherwise.
func (c *Catalog) RunInTx(ctx context.Context, fn func(ctx context.Context, s catalog.Stores) error) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(ctx, storesFor(tx, true)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func storesFor(q querier, locking bool) catalog.Stores {
	return catalog.Stores{
		Users:       &UserStore{q: q, forUpdate: locking},
		Commodities: &CommodityStore{q: q, forUpdate: locking},
		Discounts:   &DiscountStore{q: q},
		Cart:        &CartStore{q: q},
		Scores:      &ScoreStore{q: q},
	}
}
