package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
)

type addToCartRequest struct {
	Username    string
	CommodityID int64
	Quantity    int
}

func (req *addToCartRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "commodityId":
			req.CommodityID, err = d.Int64()
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeBody(r, req.decode); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	item, err := h.carts.AddItem(r.Context(), req.Username, req.CommodityID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartItem(e, item)
	})
}

func (h *Handler) listCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.carts.ListItems(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range items {
			encodeCartItem(e, &items[i])
		}
		e.ArrEnd()
	})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	commodityID, err := strconv.ParseInt(r.PathValue("commodityID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "commodity id must be an integer")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), r.PathValue("username"), commodityID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
