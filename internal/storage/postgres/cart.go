package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/bazaar-shop/internal/domain/cart"
)

const (
	listCartItemsSQL = `SELECT username, commodity_id, quantity, unit_price
		FROM cart_items WHERE username = $1 ORDER BY commodity_id`

	saveCartItemSQL = `INSERT INTO cart_items (username, commodity_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username, commodity_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE username = $1 AND commodity_id = $2`

	deleteAllCartItemsSQL = `DELETE FROM cart_items WHERE username = $1`
)

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store backed by PostgreSQL.
type CartStore struct {
	q querier
}

// ListByUser returns all cart rows for a user ordered by commodity id.
func (s *CartStore) ListByUser(ctx context.Context, username string) ([]cart.Item, error) {
	rows, err := s.q.Query(ctx, listCartItemsSQL, username)
	if err != nil {
		return nil, fmt.Errorf("listing cart for %q: %w", username, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var item cart.Item
		err := row.Scan(&item.Username, &item.CommodityID, &item.Quantity, &item.UnitPrice)
		return item, err
	})
}

// Save creates or replaces the row for (username, commodityID).
func (s *CartStore) Save(ctx context.Context, item *cart.Item) error {
	_, err := s.q.Exec(ctx, saveCartItemSQL,
		item.Username, item.CommodityID, item.Quantity, item.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("saving cart item (%q, %d): %w", item.Username, item.CommodityID, err)
	}
	return nil
}

// Delete removes one cart row. Returns cart.ErrNotFound when no row matched.
func (s *CartStore) Delete(ctx context.Context, username string, commodityID int64) error {
	tag, err := s.q.Exec(ctx, deleteCartItemSQL, username, commodityID)
	if err != nil {
		return fmt.Errorf("deleting cart item (%q, %d): %w", username, commodityID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

// DeleteAll removes every cart row for a user.
func (s *CartStore) DeleteAll(ctx context.Context, username string) error {
	_, err := s.q.Exec(ctx, deleteAllCartItemsSQL, username)
	if err != nil {
		return fmt.Errorf("clearing cart for %q: %w", username, err)
	}
	return nil
}
