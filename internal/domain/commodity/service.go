package commodity

import (
	"context"

	"github.com/go-faster/errors"
)

// Service exposes catalog queries and administration.
type Service struct {
	commodities Store
}

// NewService creates a commodity Service backed by the given store.
func NewService(commodities Store) *Service {
	return &Service{commodities: commodities}
}

// Add registers a new commodity in the catalog.
func (s *Service) Add(ctx context.Context, c *Commodity) (*Commodity, error) {
	if err := s.commodities.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create commodity")
	}
	return c, nil
}

// Get returns a single commodity by id.
func (s *Service) Get(ctx context.Context, id int64) (*Commodity, error) {
	return s.commodities.Get(ctx, id)
}

// List returns the whole catalog in id order.
func (s *Service) List(ctx context.Context) ([]Commodity, error) {
	return s.commodities.List(ctx)
}

// ListByProvider returns all commodities of one provider.
func (s *Service) ListByProvider(ctx context.Context, providerID int32) ([]Commodity, error) {
	return s.commodities.ListByProvider(ctx, providerID)
}

// ListByCategory returns all commodities carrying the given category label.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Commodity, error) {
	return s.commodities.ListByCategory(ctx, category)
}

// Search returns commodities whose name contains the given string,
// case-insensitively.
func (s *Service) Search(ctx context.Context, name string) ([]Commodity, error) {
	return s.commodities.Search(ctx, name)
}

// ListInPriceRange returns commodities priced within [from, to].
// Both bounds must be non-negative and from must not exceed to.
func (s *Service) ListInPriceRange(ctx context.Context, from, to int64) ([]Commodity, error) {
	if from < 0 {
		return nil, errors.Wrap(ErrInvalidRange, "bounds must be positive")
	}
	if from > to {
		return nil, errors.Wrap(ErrInvalidRange, "from must be less than to")
	}
	return s.commodities.ListInPriceRange(ctx, from, to)
}
