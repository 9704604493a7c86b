package cart

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a cart row for (user, commodity) is absent.
	ErrNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Item is a pending purchase intent for one (user, commodity) pair.
//
// UnitPrice is captured from the commodity at add-time; it is the price
// charged at checkout regardless of later catalog price changes.
type Item struct {
	Username    string
	CommodityID int64
	Quantity    int
	UnitPrice   int64
}

// Store defines persistence operations for cart rows.
type Store interface {
	ListByUser(ctx context.Context, username string) ([]Item, error)
	Save(ctx context.Context, item *Item) error
	// Delete removes the row for (username, commodityID). It returns
	// ErrNotFound when no such row exists.
	Delete(ctx context.Context, username string, commodityID int64) error
	DeleteAll(ctx context.Context, username string) error
}
