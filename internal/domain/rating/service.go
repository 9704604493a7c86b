// Package rating folds individual score submissions into commodity aggregate
// ratings and ranks commodities for the related-items query.
package rating

import (
	"context"
	"sort"

	"github.com/go-faster/errors"

	"github.com/xenking/bazaar-shop/internal/domain/catalog"
	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/score"
)

// ErrInvalidScore is returned for scores outside the 1..10 range.
var ErrInvalidScore = errors.New("invalid score, it must be between 1 and 10")

const (
	// categoryBoost is added to a candidate's rating when it shares at
	// least one category with the base commodity. Callers depend on the
	// resulting ranking, so the constant is part of the contract.
	categoryBoost = 11

	// maxSuggestions caps the related-items response size.
	maxSuggestions = 5
)

// Service implements score submission and the category-boost recommender.
type Service struct {
	stores catalog.Stores
	tx     catalog.TxRunner
}

// NewService creates a rating Service.
func NewService(stores catalog.Stores, tx catalog.TxRunner) *Service {
	return &Service{stores: stores, tx: tx}
}

// SubmitScore records a rating for a commodity and recomputes the commodity's
// aggregate as the mean of every submission on record. The write and the
// recompute happen in one transaction, so two simultaneous submissions are
// both reflected in the final aggregate. Returns the updated commodity.
func (s *Service) SubmitScore(ctx context.Context, username string, commodityID int64, value int) (*commodity.Commodity, error) {
	if value < 1 || value > 10 {
		return nil, ErrInvalidScore
	}

	var updated *commodity.Commodity

	err := s.tx.RunInTx(ctx, func(ctx context.Context, st catalog.Stores) error {
		if _, err := st.Users.Get(ctx, username); err != nil {
			return err
		}

		// Locks the commodity row, serializing concurrent submissions for
		// the same commodity so every recompute sees all earlier scores.
		c, err := st.Commodities.Get(ctx, commodityID)
		if err != nil {
			return err
		}

		sub := &score.Submission{
			Username:    username,
			CommodityID: commodityID,
			Score:       value,
		}
		if err := st.Scores.Save(ctx, sub); err != nil {
			return errors.Wrap(err, "save score")
		}

		all, err := st.Scores.ListByCommodity(ctx, commodityID)
		if err != nil {
			return errors.Wrap(err, "list scores")
		}

		var sum int64
		for _, sc := range all {
			sum += int64(sc.Score)
		}
		c.Rating = float64(sum) / float64(len(all))
		c.RateCount = len(all)

		if err := st.Commodities.Save(ctx, c); err != nil {
			return errors.Wrap(err, "save commodity")
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Suggest returns up to five commodities related to the given one. Candidates
// are ranked by aggregate rating plus a fixed boost when they share a
// category with the base; the base itself is never included. Ties keep the
// catalog order.
func (s *Service) Suggest(ctx context.Context, commodityID int64) ([]commodity.Commodity, error) {
	base, err := s.stores.Commodities.Get(ctx, commodityID)
	if err != nil {
		return nil, err
	}

	all, err := s.stores.Commodities.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list commodities")
	}

	candidates := make([]commodity.Commodity, 0, len(all))
	for _, c := range all {
		if c.ID == base.ID {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return suggestScore(&candidates[i], base) > suggestScore(&candidates[j], base)
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates, nil
}

// suggestScore ranks candidate c against the base commodity. A commodity
// without any submissions scores as if its rating were zero.
func suggestScore(c, base *commodity.Commodity) float64 {
	s := c.Rating
	if c.RateCount == 0 {
		s = 0
	}
	if c.SharesCategory(base) {
		s += categoryBoost
	}
	return s
}
