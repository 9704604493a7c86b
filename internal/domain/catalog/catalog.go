// Package catalog ties the per-entity stores to a shared transactional
// Catalog Store. Multi-step mutations (checkout, rating aggregation) run
// through TxRunner so that either every write commits or none do.
package catalog

import (
	"context"

	"github.com/xenking/bazaar-shop/internal/domain/cart"
	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/discount"
	"github.com/xenking/bazaar-shop/internal/domain/score"
	"github.com/xenking/bazaar-shop/internal/domain/user"
)

// Stores bundles every per-entity store backed by one Catalog Store.
type Stores struct {
	Users       user.Store
	Commodities commodity.Store
	Discounts   discount.Store
	Cart        cart.Store
	Scores      score.Store
}

// TxRunner executes fn as a single atomic unit of work. Inside fn the given
// Stores read and write uncommitted transaction state; user rows loaded
// through them are locked for the duration of the transaction, so concurrent
// units touching the same user serialize.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
