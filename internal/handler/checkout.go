package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

type selectDiscountRequest struct {
	Username string
	Code     string
}

func (req *selectDiscountRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "code":
			req.Code, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) selectDiscount(w http.ResponseWriter, r *http.Request) {
	var req selectDiscountRequest
	if err := decodeBody(r, req.decode); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	if err := h.checkouts.SelectDiscount(r.Context(), req.Username, req.Code); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	Username string
}

func (req *checkoutRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) payCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, req.decode); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	receipt, err := h.checkouts.Checkout(r.Context(), req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeReceipt(e, receipt)
	})
}
