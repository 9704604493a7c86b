package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/bazaar-shop/internal/domain/cart"
	"github.com/xenking/bazaar-shop/internal/domain/catalog"
	"github.com/xenking/bazaar-shop/internal/domain/discount"
)

var (
	// ErrEmptyCart is returned when checking out with no cart rows.
	ErrEmptyCart = errors.New("cart is empty, nothing to pay for")
	// ErrInsufficientCredit is returned when the final price exceeds the
	// user's credit balance. No partial payment is allowed.
	ErrInsufficientCredit = errors.New("insufficient credit")
)

// Receipt summarizes a successful checkout.
type Receipt struct {
	Username     string
	Subtotal     int64
	DiscountCode string
	FinalPrice   int64
	Remaining    int64
	Items        []cart.Item
}

// Service orchestrates discount selection and the atomic checkout sequence:
// price computation, credit debit, discount redemption, stock decrement and
// cart clearing.
type Service struct {
	tx catalog.TxRunner
}

// NewService creates a checkout Service. Every operation mutates the user
// row, so both run as units of work under tx.
func NewService(tx catalog.TxRunner) *Service {
	return &Service{tx: tx}
}

// SelectDiscount sets code as the user's pending discount, overwriting any
// previous pending selection. The previous selection is discarded, not
// redeemed. A code the user already redeemed is rejected with
// discount.ErrAlreadyUsed.
func (s *Service) SelectDiscount(ctx context.Context, username, code string) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context, st catalog.Stores) error {
		d, err := st.Discounts.Get(ctx, code)
		if err != nil {
			return err
		}

		// Locks the user row, serializing the selection against a
		// concurrent checkout for the same user. The read-modify-write
		// must not overlap a checkout's credit debit.
		u, err := st.Users.Get(ctx, username)
		if err != nil {
			return err
		}

		if u.HasUsed(d.Code) {
			return discount.ErrAlreadyUsed
		}

		u.CurrentDiscountCode = d.Code
		if err := st.Users.Save(ctx, u); err != nil {
			return errors.Wrap(err, "save user")
		}
		return nil
	})
}

// Checkout pays for the user's whole cart as one atomic unit: either the
// credit debit, discount redemption, stock decrements and cart clearing all
// commit, or none do. All preconditions are evaluated before any mutation.
func (s *Service) Checkout(ctx context.Context, username string) (*Receipt, error) {
	var receipt *Receipt

	err := s.tx.RunInTx(ctx, func(ctx context.Context, st catalog.Stores) error {
		// Locks the user row, serializing concurrent checkouts for the
		// same user.
		u, err := st.Users.Get(ctx, username)
		if err != nil {
			return err
		}

		items, err := st.Cart.ListByUser(ctx, username)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var subtotal int64
		for _, item := range items {
			subtotal += item.UnitPrice * int64(item.Quantity)
		}

		// Re-resolve the pending code: it may have vanished between
		// selection and checkout.
		final := subtotal
		code := u.CurrentDiscountCode
		if code != "" {
			if u.HasUsed(code) {
				return discount.ErrAlreadyUsed
			}
			d, err := st.Discounts.Get(ctx, code)
			if err != nil {
				return err
			}
			final = discountedPrice(subtotal, d.Amount)
		}

		if u.Credit-final < 0 {
			return ErrInsufficientCredit
		}

		u.Credit -= final
		if code != "" {
			u.UsedDiscounts = append(u.UsedDiscounts, code)
			u.CurrentDiscountCode = ""
		}
		if err := st.Users.Save(ctx, u); err != nil {
			return errors.Wrap(err, "save user")
		}

		// Stock is decremented without a sufficiency check; it can go
		// negative. Single-statement decrements serialize on the
		// commodity row lock.
		for _, item := range items {
			if err := st.Commodities.AddStock(ctx, item.CommodityID, -int64(item.Quantity)); err != nil {
				return errors.Wrapf(err, "decrement stock for commodity %d", item.CommodityID)
			}
		}

		if err := st.Cart.DeleteAll(ctx, username); err != nil {
			return errors.Wrap(err, "clear cart")
		}

		receipt = &Receipt{
			Username:     username,
			Subtotal:     subtotal,
			DiscountCode: code,
			FinalPrice:   final,
			Remaining:    u.Credit,
			Items:        items,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// discountedPrice applies a whole-percentage discount to an integer subtotal.
// The multiplier is computed in floating point and the result truncated
// toward zero, matching the historical billing behaviour that downstream
// systems depend on.
func discountedPrice(subtotal int64, amount int) int64 {
	return int64(float64(subtotal) * (1 - float64(amount)/100.0))
}
