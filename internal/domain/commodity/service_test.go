package commodity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	Store
	byPrice []Commodity
	lastFrom,
	lastTo int64
}

func (m *mockStore) ListInPriceRange(_ context.Context, from, to int64) ([]Commodity, error) {
	m.lastFrom, m.lastTo = from, to
	var out []Commodity
	for _, c := range m.byPrice {
		if c.Price >= from && c.Price <= to {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestListInPriceRange(t *testing.T) {
	store := &mockStore{byPrice: []Commodity{
		{ID: 1, Price: 100},
		{ID: 2, Price: 500},
		{ID: 3, Price: 900},
	}}
	svc := NewService(store)

	got, err := svc.ListInPriceRange(context.Background(), 100, 500)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestListInPriceRange_FromGreaterThanTo(t *testing.T) {
	svc := NewService(&mockStore{})

	_, err := svc.ListInPriceRange(context.Background(), 500, 100)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestListInPriceRange_NegativeFrom(t *testing.T) {
	svc := NewService(&mockStore{})

	_, err := svc.ListInPriceRange(context.Background(), -1, 100)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestSharesCategory(t *testing.T) {
	a := &Commodity{Categories: []string{"electronics", "audio"}}
	b := &Commodity{Categories: []string{"audio"}}
	c := &Commodity{Categories: []string{"kitchen"}}
	empty := &Commodity{}

	assert.True(t, a.SharesCategory(b))
	assert.True(t, b.SharesCategory(a))
	assert.False(t, a.SharesCategory(c))
	assert.False(t, a.SharesCategory(empty))
	assert.False(t, empty.SharesCategory(empty))
}
