package discount

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a discount code is unknown.
	ErrNotFound = errors.New("discount not found")
	// ErrAlreadyUsed is returned when a user tries to apply a code they
	// already redeemed.
	ErrAlreadyUsed = errors.New("discount code already used")
)

// Discount is a one-time percentage code. Amount is a whole percentage in
// [0, 100]. A discount is immutable once issued and usable by a given user
// at most once ever.
type Discount struct {
	Code   string
	Amount int
}

// Store defines lookup and creation of discount codes.
type Store interface {
	Get(ctx context.Context, code string) (*Discount, error)
	Create(ctx context.Context, d *Discount) error
}
