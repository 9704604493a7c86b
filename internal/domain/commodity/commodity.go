package commodity

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested commodity does not exist.
	ErrNotFound = errors.New("commodity not found")
	// ErrInvalidRange is returned for malformed price range queries.
	ErrInvalidRange = errors.New("invalid price range")
)

// Commodity represents a catalog item available for purchase.
//
// Price is the unit price in integer currency units. Rating is the arithmetic
// mean of all recorded score submissions; until the first submission arrives
// RateCount is zero and Rating carries no meaning.
type Commodity struct {
	ID         int64
	Name       string
	ProviderID int32
	Price      int64
	InStock    int64
	Categories []string
	Rating     float64
	RateCount  int
}

// SharesCategory reports whether c and other have at least one category label
// in common.
func (c *Commodity) SharesCategory(other *Commodity) bool {
	for _, a := range c.Categories {
		for _, b := range other.Categories {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Store defines persistence operations for the commodity catalog.
type Store interface {
	Get(ctx context.Context, id int64) (*Commodity, error)
	List(ctx context.Context) ([]Commodity, error)
	ListByProvider(ctx context.Context, providerID int32) ([]Commodity, error)
	ListByCategory(ctx context.Context, category string) ([]Commodity, error)
	Search(ctx context.Context, name string) ([]Commodity, error)
	ListInPriceRange(ctx context.Context, from, to int64) ([]Commodity, error)
	Create(ctx context.Context, c *Commodity) error
	Save(ctx context.Context, c *Commodity) error
	SaveAll(ctx context.Context, cs []Commodity) error
	// AddStock adjusts in_stock by delta as a single statement so that
	// concurrent adjustments to the same row serialize on the row lock.
	AddStock(ctx context.Context, id int64, delta int64) error
}
