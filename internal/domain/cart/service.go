package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/user"
)

// Service is the cart ledger: it records what a user intends to buy.
// Adding to the cart never reserves inventory and never checks credit.
type Service struct {
	users       user.Store
	commodities commodity.Store
	items       Store
}

// NewService creates a cart Service with the required stores.
func NewService(users user.Store, commodities commodity.Store, items Store) *Service {
	return &Service{
		users:       users,
		commodities: commodities,
		items:       items,
	}
}

// AddItem creates or replaces the cart row for (username, commodityID) and
// captures the commodity's current unit price into the row.
func (s *Service) AddItem(ctx context.Context, username string, commodityID int64, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.users.Get(ctx, username); err != nil {
		return nil, err
	}

	c, err := s.commodities.Get(ctx, commodityID)
	if err != nil {
		return nil, err
	}

	item := &Item{
		Username:    username,
		CommodityID: commodityID,
		Quantity:    quantity,
		UnitPrice:   c.Price,
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, errors.Wrap(err, "save cart item")
	}

	return item, nil
}

// ListItems returns all pending cart rows for a user.
func (s *Service) ListItems(ctx context.Context, username string) ([]Item, error) {
	if _, err := s.users.Get(ctx, username); err != nil {
		return nil, err
	}
	return s.items.ListByUser(ctx, username)
}

// RemoveItem deletes the cart row for (username, commodityID).
// Removing a row that does not exist returns ErrNotFound.
func (s *Service) RemoveItem(ctx context.Context, username string, commodityID int64) error {
	return s.items.Delete(ctx, username, commodityID)
}
