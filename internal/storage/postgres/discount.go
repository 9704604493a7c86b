package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/bazaar-shop/internal/domain/discount"
)

const (
	getDiscountSQL = `SELECT code, amount FROM discounts WHERE code = $1`

	createDiscountSQL = `INSERT INTO discounts (code, amount) VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING`
)

var _ discount.Store = (*DiscountStore)(nil)

// DiscountStore implements discount.Store backed by PostgreSQL.
type DiscountStore struct {
	q querier
}

// Get looks up a discount by its code.
func (s *DiscountStore) Get(ctx context.Context, code string) (*discount.Discount, error) {
	rows, err := s.q.Query(ctx, getDiscountSQL, code)
	if err != nil {
		return nil, fmt.Errorf("getting discount %q: %w", code, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (discount.Discount, error) {
		var out discount.Discount
		err := row.Scan(&out.Code, &out.Amount)
		return out, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("getting discount %q: %w", code, err)
	}
	return &d, nil
}

// Create inserts a discount code. Codes are immutable once issued, so
// conflicting inserts are ignored.
func (s *DiscountStore) Create(ctx context.Context, d *discount.Discount) error {
	_, err := s.q.Exec(ctx, createDiscountSQL, d.Code, d.Amount)
	if err != nil {
		return fmt.Errorf("creating discount %q: %w", d.Code, err)
	}
	return nil
}
