package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/bazaar-shop/internal/domain/auth"
)

const (
	findAPIKeyByHashSQL = `SELECT id, key_hash, name, scopes FROM api_keys WHERE key_hash = $1`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key_hash) DO UPDATE SET name = EXCLUDED.name, scopes = EXCLUDED.scopes`
)

var _ auth.Repository = (*APIKeyStore)(nil)

// APIKeyStore implements auth.Repository backed by PostgreSQL.
type APIKeyStore struct {
	q querier
}

// NewAPIKeyStore returns an APIKeyStore that uses the given querier.
func NewAPIKeyStore(q querier) *APIKeyStore {
	return &APIKeyStore{q: q}
}

// FindByHash looks up an API key by its HMAC-SHA256 hash.
func (s *APIKeyStore) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	rows, err := s.q.Query(ctx, findAPIKeyByHashSQL, hash)
	if err != nil {
		return nil, fmt.Errorf("finding api key: %w", err)
	}

	info, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.APIKeyInfo, error) {
		var out auth.APIKeyInfo
		err := row.Scan(&out.ID, &out.KeyHash, &out.Name, &out.Scopes)
		return out, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUnknownKey
		}
		return nil, fmt.Errorf("finding api key: %w", err)
	}
	return &info, nil
}

// Upsert stores an API key record, replacing name and scopes on conflict.
func (s *APIKeyStore) Upsert(ctx context.Context, info *auth.APIKeyInfo) error {
	_, err := s.q.Exec(ctx, upsertAPIKeySQL, info.ID, info.KeyHash, info.Name, info.Scopes)
	if err != nil {
		return fmt.Errorf("upserting api key %q: %w", info.Name, err)
	}
	return nil
}
