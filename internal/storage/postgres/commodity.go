package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/bazaar-shop/internal/domain/commodity"
)

const (
	commodityColumns = `id, name, provider_id, price, in_stock, categories, rating, rate_count`

	getCommoditySQL = `SELECT ` + commodityColumns + ` FROM commodities WHERE id = $1`

	listCommoditiesSQL = `SELECT ` + commodityColumns + ` FROM commodities ORDER BY id`

	listByProviderSQL = `SELECT ` + commodityColumns + ` FROM commodities
		WHERE provider_id = $1 ORDER BY id`

	listByCategorySQL = `SELECT ` + commodityColumns + ` FROM commodities
		WHERE EXISTS (SELECT 1 FROM unnest(categories) AS c WHERE LOWER(c) = LOWER($1))
		ORDER BY id`

	searchCommoditiesSQL = `SELECT ` + commodityColumns + ` FROM commodities
		WHERE name ILIKE '%' || $1 || '%' ORDER BY id`

	listInPriceRangeSQL = `SELECT ` + commodityColumns + ` FROM commodities
		WHERE price BETWEEN $1 AND $2 ORDER BY id`

	createCommoditySQL = `INSERT INTO commodities
		(id, name, provider_id, price, in_stock, categories, rating, rate_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	saveCommoditySQL = `UPDATE commodities SET name = $2, provider_id = $3, price = $4,
		in_stock = $5, categories = $6, rating = $7, rate_count = $8
		WHERE id = $1`

	addStockSQL = `UPDATE commodities SET in_stock = in_stock + $2 WHERE id = $1`
)

var _ commodity.Store = (*CommodityStore)(nil)

// CommodityStore implements commodity.Store backed by PostgreSQL.
//
// When forUpdate is set (transaction-scoped stores), Get locks the commodity
// row for the duration of the transaction, serializing concurrent rating
// recomputes for the same commodity.
type CommodityStore struct {
	q         querier
	forUpdate bool
}

// Get returns a single commodity by its identifier.
func (s *CommodityStore) Get(ctx context.Context, id int64) (*commodity.Commodity, error) {
	query := getCommoditySQL
	if s.forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := s.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("getting commodity %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCommodity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, commodity.ErrNotFound
		}
		return nil, fmt.Errorf("getting commodity %d: %w", id, err)
	}
	return &c, nil
}

// List returns the whole catalog ordered by id.
func (s *CommodityStore) List(ctx context.Context) ([]commodity.Commodity, error) {
	return s.collect(ctx, "listing commodities", listCommoditiesSQL)
}

// ListByProvider returns all commodities of one provider.
func (s *CommodityStore) ListByProvider(ctx context.Context, providerID int32) ([]commodity.Commodity, error) {
	return s.collect(ctx, "listing commodities by provider", listByProviderSQL, providerID)
}

// ListByCategory returns commodities carrying the category label,
// case-insensitively.
func (s *CommodityStore) ListByCategory(ctx context.Context, category string) ([]commodity.Commodity, error) {
	return s.collect(ctx, "listing commodities by category", listByCategorySQL, category)
}

// Search returns commodities whose name contains the given string.
func (s *CommodityStore) Search(ctx context.Context, name string) ([]commodity.Commodity, error) {
	return s.collect(ctx, "searching commodities", searchCommoditiesSQL, name)
}

// ListInPriceRange returns commodities priced within [from, to].
func (s *CommodityStore) ListInPriceRange(ctx context.Context, from, to int64) ([]commodity.Commodity, error) {
	return s.collect(ctx, "listing commodities in price range", listInPriceRangeSQL, from, to)
}

// Create inserts a new commodity.
func (s *CommodityStore) Create(ctx context.Context, c *commodity.Commodity) error {
	_, err := s.q.Exec(ctx, createCommoditySQL,
		c.ID, c.Name, c.ProviderID, c.Price, c.InStock, c.Categories, c.Rating, c.RateCount,
	)
	if err != nil {
		return fmt.Errorf("creating commodity %d: %w", c.ID, err)
	}
	return nil
}

// Save persists all mutable fields of an existing commodity.
func (s *CommodityStore) Save(ctx context.Context, c *commodity.Commodity) error {
	tag, err := s.q.Exec(ctx, saveCommoditySQL,
		c.ID, c.Name, c.ProviderID, c.Price, c.InStock, c.Categories, c.Rating, c.RateCount,
	)
	if err != nil {
		return fmt.Errorf("saving commodity %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return commodity.ErrNotFound
	}
	return nil
}

// SaveAll persists a batch of commodities in a single round trip.
func (s *CommodityStore) SaveAll(ctx context.Context, cs []commodity.Commodity) error {
	batch := &pgx.Batch{}
	for _, c := range cs {
		batch.Queue(saveCommoditySQL,
			c.ID, c.Name, c.ProviderID, c.Price, c.InStock, c.Categories, c.Rating, c.RateCount,
		)
	}

	results := s.q.SendBatch(ctx, batch)
	defer results.Close()

	for range cs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("saving commodities batch: %w", err)
		}
	}
	return nil
}

// AddStock adjusts in_stock by delta in one statement. The adjustment is not
// checked against the current stock level, so stock can go negative.
func (s *CommodityStore) AddStock(ctx context.Context, id int64, delta int64) error {
	tag, err := s.q.Exec(ctx, addStockSQL, id, delta)
	if err != nil {
		return fmt.Errorf("adjusting stock for commodity %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return commodity.ErrNotFound
	}
	return nil
}

func (s *CommodityStore) collect(ctx context.Context, op, sql string, args ...any) ([]commodity.Commodity, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pgx.CollectRows(rows, scanCommodity)
}

func scanCommodity(row pgx.CollectableRow) (commodity.Commodity, error) {
	var c commodity.Commodity
	err := row.Scan(
		&c.ID, &c.Name, &c.ProviderID, &c.Price, &c.InStock,
		&c.Categories, &c.Rating, &c.RateCount,
	)
	return c, err
}
