package score

import "context"

// Submission is a single user rating for a commodity, on a 1..10 scale.
// Submissions accumulate: rating the same commodity again adds another row
// rather than replacing the previous one.
type Submission struct {
	Username    string
	CommodityID int64
	Score       int
}

// Store defines persistence operations for score submissions.
type Store interface {
	ListByCommodity(ctx context.Context, commodityID int64) ([]Submission, error)
	Save(ctx context.Context, s *Submission) error
}
