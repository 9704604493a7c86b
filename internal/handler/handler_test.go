package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bazaar-shop/internal/domain/cart"
	"github.com/xenking/bazaar-shop/internal/domain/catalog"
	"github.com/xenking/bazaar-shop/internal/domain/checkout"
	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/discount"
	"github.com/xenking/bazaar-shop/internal/domain/rating"
	"github.com/xenking/bazaar-shop/internal/domain/score"
	"github.com/xenking/bazaar-shop/internal/domain/user"
)

// --- In-memory catalog backing the full handler stack ---

type memCatalog struct {
	users       map[string]*user.User
	commodities []commodity.Commodity
	discounts   map[string]*discount.Discount
	items       map[string]map[int64]cart.Item
	scores      []score.Submission
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		users:     make(map[string]*user.User),
		discounts: make(map[string]*discount.Discount),
		items:     make(map[string]map[int64]cart.Item),
	}
}

func (m *memCatalog) stores() catalog.Stores {
	return catalog.Stores{
		Users:       memUsers{m},
		Commodities: memCommodities{m},
		Discounts:   memDiscounts{m},
		Cart:        memCart{m},
		Scores:      memScores{m},
	}
}

func (m *memCatalog) RunInTx(ctx context.Context, fn func(context.Context, catalog.Stores) error) error {
	return fn(ctx, m.stores())
}

type memUsers struct{ m *memCatalog }

func (s memUsers) Get(_ context.Context, username string) (*user.User, error) {
	u, ok := s.m.users[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	cp.UsedDiscounts = append([]string(nil), u.UsedDiscounts...)
	return &cp, nil
}

func (s memUsers) Create(_ context.Context, u *user.User) error {
	if _, ok := s.m.users[u.Username]; ok {
		return user.ErrAlreadyExists
	}
	cp := *u
	s.m.users[u.Username] = &cp
	return nil
}

func (s memUsers) Save(_ context.Context, u *user.User) error {
	cp := *u
	cp.UsedDiscounts = append([]string(nil), u.UsedDiscounts...)
	s.m.users[u.Username] = &cp
	return nil
}

type memCommodities struct{ m *memCatalog }

func (s memCommodities) Get(_ context.Context, id int64) (*commodity.Commodity, error) {
	for i := range s.m.commodities {
		if s.m.commodities[i].ID == id {
			cp := s.m.commodities[i]
			return &cp, nil
		}
	}
	return nil, commodity.ErrNotFound
}

func (s memCommodities) List(_ context.Context) ([]commodity.Commodity, error) {
	return append([]commodity.Commodity(nil), s.m.commodities...), nil
}

func (s memCommodities) ListByProvider(_ context.Context, providerID int32) ([]commodity.Commodity, error) {
	var out []commodity.Commodity
	for _, c := range s.m.commodities {
		if c.ProviderID == providerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s memCommodities) ListByCategory(_ context.Context, category string) ([]commodity.Commodity, error) {
	var out []commodity.Commodity
	for _, c := range s.m.commodities {
		for _, cat := range c.Categories {
			if strings.EqualFold(cat, category) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s memCommodities) Search(_ context.Context, name string) ([]commodity.Commodity, error) {
	var out []commodity.Commodity
	for _, c := range s.m.commodities {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s memCommodities) ListInPriceRange(_ context.Context, from, to int64) ([]commodity.Commodity, error) {
	var out []commodity.Commodity
	for _, c := range s.m.commodities {
		if c.Price >= from && c.Price <= to {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s memCommodities) Create(_ context.Context, c *commodity.Commodity) error {
	s.m.commodities = append(s.m.commodities, *c)
	return nil
}

func (s memCommodities) Save(_ context.Context, c *commodity.Commodity) error {
	for i := range s.m.commodities {
		if s.m.commodities[i].ID == c.ID {
			s.m.commodities[i] = *c
			return nil
		}
	}
	return commodity.ErrNotFound
}

func (s memCommodities) SaveAll(ctx context.Context, cs []commodity.Commodity) error {
	for i := range cs {
		if err := s.Save(ctx, &cs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s memCommodities) AddStock(_ context.Context, id int64, delta int64) error {
	for i := range s.m.commodities {
		if s.m.commodities[i].ID == id {
			s.m.commodities[i].InStock += delta
			return nil
		}
	}
	return commodity.ErrNotFound
}

type memDiscounts struct{ m *memCatalog }

func (s memDiscounts) Get(_ context.Context, code string) (*discount.Discount, error) {
	d, ok := s.m.discounts[code]
	if !ok {
		return nil, discount.ErrNotFound
	}
	return d, nil
}

func (s memDiscounts) Create(_ context.Context, d *discount.Discount) error {
	s.m.discounts[d.Code] = d
	return nil
}

type memCart struct{ m *memCatalog }

func (s memCart) ListByUser(_ context.Context, username string) ([]cart.Item, error) {
	var out []cart.Item
	for _, item := range s.m.items[username] {
		out = append(out, item)
	}
	return out, nil
}

func (s memCart) Save(_ context.Context, item *cart.Item) error {
	if s.m.items[item.Username] == nil {
		s.m.items[item.Username] = make(map[int64]cart.Item)
	}
	s.m.items[item.Username][item.CommodityID] = *item
	return nil
}

func (s memCart) Delete(_ context.Context, username string, commodityID int64) error {
	if _, ok := s.m.items[username][commodityID]; !ok {
		return cart.ErrNotFound
	}
	delete(s.m.items[username], commodityID)
	return nil
}

func (s memCart) DeleteAll(_ context.Context, username string) error {
	delete(s.m.items, username)
	return nil
}

type memScores struct{ m *memCatalog }

func (s memScores) ListByCommodity(_ context.Context, commodityID int64) ([]score.Submission, error) {
	var out []score.Submission
	for _, sub := range s.m.scores {
		if sub.CommodityID == commodityID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s memScores) Save(_ context.Context, sub *score.Submission) error {
	s.m.scores = append(s.m.scores, *sub)
	return nil
}

// --- Harness ---

func newTestServer(m *memCatalog) *httptest.Server {
	stores := m.stores()
	h := New(
		user.NewService(stores.Users),
		commodity.NewService(stores.Commodities),
		cart.NewService(stores.Users, stores.Commodities, stores.Cart),
		checkout.NewService(m),
		rating.NewService(stores, m),
	)

	mux := http.NewServeMux()
	h.Register(mux, NoAuth)
	return httptest.NewServer(mux)
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

// --- Tests ---

func TestRegisterUser(t *testing.T) {
	srv := newTestServer(newMemCatalog())
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/users", `{"username":"amin","credit":5000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "amin", body["username"])
	assert.EqualValues(t, 5000, body["credit"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/users", `{"username":"amin","credit":1}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["message"], "already exists")
}

func TestAddToCart_UnknownCommodity(t *testing.T) {
	m := newMemCatalog()
	m.users["amin"] = &user.User{Username: "amin", Credit: 1000}
	srv := newTestServer(m)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/cart", `{"username":"amin","commodityId":42,"quantity":1}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["message"], "commodity not found")
}

func TestCheckoutFlow(t *testing.T) {
	m := newMemCatalog()
	m.users["amin"] = &user.User{Username: "amin", Credit: 2000}
	m.commodities = []commodity.Commodity{{ID: 1, Name: "Mouse", Price: 1000, InStock: 10}}
	m.discounts["SAVE10"] = &discount.Discount{Code: "SAVE10", Amount: 10}
	srv := newTestServer(m)
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/cart", `{"username":"amin","commodityId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/discounts/select", `{"username":"amin","code":"SAVE10"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/checkout", `{"username":"amin"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2000, body["subtotal"])
	assert.EqualValues(t, 1800, body["finalPrice"])
	assert.EqualValues(t, 200, body["remainingCredit"])
	assert.Equal(t, "SAVE10", body["discountCode"])

	// Cart is cleared and stock reduced.
	assert.Empty(t, m.items["amin"])
	assert.EqualValues(t, 8, m.commodities[0].InStock)

	// The code cannot be selected again.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/discounts/select", `{"username":"amin","code":"SAVE10"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["message"], "already used")
}

func TestCheckout_EmptyCart(t *testing.T) {
	m := newMemCatalog()
	m.users["amin"] = &user.User{Username: "amin", Credit: 2000}
	srv := newTestServer(m)
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/checkout", `{"username":"amin"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckout_InsufficientCredit(t *testing.T) {
	m := newMemCatalog()
	m.users["amin"] = &user.User{Username: "amin", Credit: 100}
	m.commodities = []commodity.Commodity{{ID: 1, Name: "Mouse", Price: 150, InStock: 10}}
	srv := newTestServer(m)
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/cart", `{"username":"amin","commodityId":1,"quantity":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/checkout", `{"username":"amin"}`)
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	// Credit and cart untouched.
	assert.EqualValues(t, 100, m.users["amin"].Credit)
	assert.Len(t, m.items["amin"], 1)
}

func TestRateCommodity(t *testing.T) {
	m := newMemCatalog()
	m.users["amin"] = &user.User{Username: "amin"}
	m.commodities = []commodity.Commodity{{ID: 1, Name: "Mouse", Price: 100}}
	srv := newTestServer(m)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/commodities/1/rate", `{"username":"amin","score":8}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 8, body["rating"])
	assert.EqualValues(t, 1, body["rateCount"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/commodities/1/rate", `{"username":"amin","score":11}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSuggestCommodities(t *testing.T) {
	m := newMemCatalog()
	m.commodities = []commodity.Commodity{
		{ID: 1, Name: "Mouse", Categories: []string{"electronics"}},
		{ID: 2, Name: "Keyboard", Categories: []string{"electronics"}, Rating: 5, RateCount: 1},
		{ID: 3, Name: "Mug", Categories: []string{"kitchen"}, Rating: 9, RateCount: 1},
	}
	srv := newTestServer(m)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/commodities/1/suggested")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.EqualValues(t, 2, got[0]["id"])
	assert.EqualValues(t, 3, got[1]["id"])
}

func TestListCommodities_PriceRange(t *testing.T) {
	m := newMemCatalog()
	m.commodities = []commodity.Commodity{
		{ID: 1, Name: "Mug", Price: 300},
		{ID: 2, Name: "Mouse", Price: 1000},
	}
	srv := newTestServer(m)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/commodities?from=500&to=2000")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.EqualValues(t, 2, got[0]["id"])

	// Inverted bounds are rejected.
	resp, err = http.Get(srv.URL + "/commodities?from=2000&to=500")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(newMemCatalog())
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/users", `{"username":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "malformed")
}
