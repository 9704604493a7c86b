package user

import (
	"context"

	"github.com/go-faster/errors"
)

// Service exposes account registration and lookup.
type Service struct {
	users Store
}

// NewService creates a user Service backed by the given store.
func NewService(users Store) *Service {
	return &Service{users: users}
}

// Register creates a new account. The username must be unused.
func (s *Service) Register(ctx context.Context, u *User) (*User, error) {
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Get returns the account for the given username.
func (s *Service) Get(ctx context.Context, username string) (*User, error) {
	return s.users.Get(ctx, username)
}
