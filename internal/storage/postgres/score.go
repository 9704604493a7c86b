package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/bazaar-shop/internal/domain/score"
)

const (
	listScoresSQL = `SELECT username, commodity_id, score FROM scores
		WHERE commodity_id = $1 ORDER BY id`

	saveScoreSQL = `INSERT INTO scores (username, commodity_id, score) VALUES ($1, $2, $3)`
)

var _ score.Store = (*ScoreStore)(nil)

// ScoreStore implements score.Store backed by PostgreSQL.
type ScoreStore struct {
	q querier
}

// ListByCommodity returns every submission recorded for a commodity in
// submission order.
func (s *ScoreStore) ListByCommodity(ctx context.Context, commodityID int64) ([]score.Submission, error) {
	rows, err := s.q.Query(ctx, listScoresSQL, commodityID)
	if err != nil {
		return nil, fmt.Errorf("listing scores for commodity %d: %w", commodityID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (score.Submission, error) {
		var sub score.Submission
		err := row.Scan(&sub.Username, &sub.CommodityID, &sub.Score)
		return sub, err
	})
}

// Save appends a submission. Submissions are never replaced; repeated ratings
// from the same user accumulate.
func (s *ScoreStore) Save(ctx context.Context, sub *score.Submission) error {
	_, err := s.q.Exec(ctx, saveScoreSQL, sub.Username, sub.CommodityID, sub.Score)
	if err != nil {
		return fmt.Errorf("saving score for commodity %d: %w", sub.CommodityID, err)
	}
	return nil
}
