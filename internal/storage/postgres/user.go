package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xenking/bazaar-shop/internal/domain/user"
)

const (
	getUserSQL = `SELECT username, credit, COALESCE(current_discount_code, '')
		FROM users WHERE username = $1`

	getUsedDiscountsSQL = `SELECT code FROM used_discounts WHERE username = $1 ORDER BY code`

	createUserSQL = `INSERT INTO users (username, credit) VALUES ($1, $2)`

	saveUserSQL = `UPDATE users SET credit = $2, current_discount_code = NULLIF($3, '')
		WHERE username = $1`

	insertUsedDiscountSQL = `INSERT INTO used_discounts (username, code)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
)

var _ user.Store = (*UserStore)(nil)

// UserStore implements user.Store backed by PostgreSQL.
//
// When forUpdate is set (transaction-scoped stores), Get locks the user row
// for the duration of the transaction, serializing concurrent checkouts for
// the same user.
type UserStore struct {
	q         querier
	forUpdate bool
}

// Get returns the user with their redeemed discount code set.
func (s *UserStore) Get(ctx context.Context, username string) (*user.User, error) {
	query := getUserSQL
	if s.forUpdate {
		query += " FOR UPDATE"
	}

	var u user.User
	rows, err := s.q.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	u, err = pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (user.User, error) {
		var out user.User
		err := row.Scan(&out.Username, &out.Credit, &out.CurrentDiscountCode)
		return out, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}

	used, err := s.q.Query(ctx, getUsedDiscountsSQL, username)
	if err != nil {
		return nil, fmt.Errorf("getting used discounts for %q: %w", username, err)
	}
	u.UsedDiscounts, err = pgx.CollectRows(used, func(row pgx.CollectableRow) (string, error) {
		var code string
		err := row.Scan(&code)
		return code, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting used discounts for %q: %w", username, err)
	}

	return &u, nil
}

// Create inserts a new user row.
func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	_, err := s.q.Exec(ctx, createUserSQL, u.Username, u.Credit)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrAlreadyExists
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// Save persists the user's credit, pending discount code and any newly
// redeemed codes. Redeemed codes are insert-only: rows are never removed
// from the redeemed set.
func (s *UserStore) Save(ctx context.Context, u *user.User) error {
	tag, err := s.q.Exec(ctx, saveUserSQL, u.Username, u.Credit, u.CurrentDiscountCode)
	if err != nil {
		return fmt.Errorf("saving user %q: %w", u.Username, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	if len(u.UsedDiscounts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, code := range u.UsedDiscounts {
		batch.Queue(insertUsedDiscountSQL, u.Username, code)
	}

	results := s.q.SendBatch(ctx, batch)
	defer results.Close()

	for range u.UsedDiscounts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("recording used discounts for %q: %w", u.Username, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
