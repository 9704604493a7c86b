package user

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when registering a username that is taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// User represents a shop account with a stored credit balance.
//
// Credit is held in integer currency units. UsedDiscounts is the set of
// discount codes this user has redeemed; a code present here can never be
// applied again. CurrentDiscountCode is the selected-but-unredeemed code,
// empty when nothing is pending.
type User struct {
	Username            string
	Credit              int64
	UsedDiscounts       []string
	CurrentDiscountCode string
}

// HasUsed reports whether the user already redeemed the given discount code.
func (u *User) HasUsed(code string) bool {
	for _, used := range u.UsedDiscounts {
		if used == code {
			return true
		}
	}
	return false
}

// Store defines persistence operations for users.
type Store interface {
	Get(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
}
