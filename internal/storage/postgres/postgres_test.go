package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bazaar-shop/internal/domain/user"
)

var errRecorded = errors.New("recorded")

// recordingQuerier captures every statement without touching a database.
// Query fails after recording so callers bail out before scanning rows.
type recordingQuerier struct {
	queries  []string
	execs    []string
	batchLen int
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, sql)
	return nil, errRecorded
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (q *recordingQuerier) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	q.batchLen = b.Len()
	return stubBatchResults{}
}

type stubBatchResults struct{}

func (stubBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
func (stubBatchResults) Query() (pgx.Rows, error) { return nil, errRecorded }
func (stubBatchResults) QueryRow() pgx.Row        { return nil }
func (stubBatchResults) Close() error             { return nil }

func TestStoresFor_TxScopedGetsLockRows(t *testing.T) {
	ctx := context.Background()

	// Both the user and the commodity row must be locked inside a
	// transaction: checkout serializes on the user, rating recomputes on
	// the commodity.
	t.Run("transaction-scoped", func(t *testing.T) {
		q := &recordingQuerier{}
		st := storesFor(q, true)

		_, _ = st.Users.Get(ctx, "amin")
		_, _ = st.Commodities.Get(ctx, 1)

		require.Len(t, q.queries, 2)
		for _, sql := range q.queries {
			assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), "query %q", sql)
		}
	})

	t.Run("pool-backed", func(t *testing.T) {
		q := &recordingQuerier{}
		st := storesFor(q, false)

		_, _ = st.Users.Get(ctx, "amin")
		_, _ = st.Commodities.Get(ctx, 1)

		require.Len(t, q.queries, 2)
		for _, sql := range q.queries {
			assert.False(t, strings.Contains(sql, "FOR UPDATE"), "query %q", sql)
		}
	})
}

func TestUserStore_SaveBatchesRedeemedCodes(t *testing.T) {
	q := &recordingQuerier{}
	s := &UserStore{q: q}

	u := &user.User{
		Username:      "amin",
		Credit:        100,
		UsedDiscounts: []string{"WELCOME10", "SPRING25", "FREEBAZR"},
	}
	require.NoError(t, s.Save(context.Background(), u))

	// One UPDATE for the row, one batch round trip for the redeemed set.
	assert.Len(t, q.execs, 1)
	assert.Equal(t, 3, q.batchLen)
}

func TestUserStore_SaveSkipsEmptyRedeemedSet(t *testing.T) {
	q := &recordingQuerier{}
	s := &UserStore{q: q}

	require.NoError(t, s.Save(context.Background(), &user.User{Username: "amin"}))

	assert.Len(t, q.execs, 1)
	assert.Zero(t, q.batchLen)
}
