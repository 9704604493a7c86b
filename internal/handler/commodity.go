package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/bazaar-shop/internal/domain/commodity"
)

type addCommodityRequest struct {
	ID         int64
	Name       string
	ProviderID int32
	Price      int64
	InStock    int64
	Categories []string
}

func (req *addCommodityRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			req.ID, err = d.Int64()
		case "name":
			req.Name, err = d.Str()
		case "providerId":
			req.ProviderID, err = d.Int32()
		case "price":
			req.Price, err = d.Int64()
		case "inStock":
			req.InStock, err = d.Int64()
		case "categories":
			err = d.Arr(func(d *jx.Decoder) error {
				cat, err := d.Str()
				if err != nil {
					return err
				}
				req.Categories = append(req.Categories, cat)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) addCommodity(w http.ResponseWriter, r *http.Request) {
	var req addCommodityRequest
	if err := decodeBody(r, req.decode); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.Price < 0 {
		writeBadRequest(w, "price must not be negative")
		return
	}

	c, err := h.commodities.Add(r.Context(), &commodity.Commodity{
		ID:         req.ID,
		Name:       req.Name,
		ProviderID: req.ProviderID,
		Price:      req.Price,
		InStock:    req.InStock,
		Categories: req.Categories,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeCommodity(e, c)
	})
}

func (h *Handler) getCommodity(w http.ResponseWriter, r *http.Request) {
	id, ok := commodityID(w, r)
	if !ok {
		return
	}

	c, err := h.commodities.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCommodity(e, c)
	})
}

// listCommodities serves the catalog listing with optional filters: provider,
// category, search string, or an inclusive price range.
func (h *Handler) listCommodities(w http.ResponseWriter, r *http.Request) {
	var (
		ctx = r.Context()
		q   = r.URL.Query()

		cs  []commodity.Commodity
		err error
	)

	switch {
	case q.Has("provider"):
		var provider int64
		provider, err = strconv.ParseInt(q.Get("provider"), 10, 32)
		if err != nil {
			writeBadRequest(w, "provider must be an integer")
			return
		}
		cs, err = h.commodities.ListByProvider(ctx, int32(provider))
	case q.Has("category"):
		cs, err = h.commodities.ListByCategory(ctx, q.Get("category"))
	case q.Has("search"):
		cs, err = h.commodities.Search(ctx, q.Get("search"))
	case q.Has("from") || q.Has("to"):
		var from, to int64
		if from, err = strconv.ParseInt(q.Get("from"), 10, 64); err != nil {
			writeBadRequest(w, "from must be an integer")
			return
		}
		if to, err = strconv.ParseInt(q.Get("to"), 10, 64); err != nil {
			writeBadRequest(w, "to must be an integer")
			return
		}
		cs, err = h.commodities.ListInPriceRange(ctx, from, to)
	default:
		cs, err = h.commodities.List(ctx)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCommodities(e, cs)
	})
}

type rateCommodityRequest struct {
	Username string
	Score    int
}

func (req *rateCommodityRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "score":
			req.Score, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) rateCommodity(w http.ResponseWriter, r *http.Request) {
	id, ok := commodityID(w, r)
	if !ok {
		return
	}

	var req rateCommodityRequest
	if err := decodeBody(r, req.decode); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	c, err := h.ratings.SubmitScore(r.Context(), req.Username, id, req.Score)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCommodity(e, c)
	})
}

func (h *Handler) suggestCommodities(w http.ResponseWriter, r *http.Request) {
	id, ok := commodityID(w, r)
	if !ok {
		return
	}

	cs, err := h.ratings.Suggest(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCommodities(e, cs)
	})
}

func commodityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "commodity id must be an integer")
		return 0, false
	}
	return id, true
}
