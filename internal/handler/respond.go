package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bazaar-shop/internal/domain/cart"
	"github.com/xenking/bazaar-shop/internal/domain/checkout"
	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/discount"
	"github.com/xenking/bazaar-shop/internal/domain/rating"
	"github.com/xenking/bazaar-shop/internal/domain/user"
)

// maxBodySize caps request bodies; every request body in this API is tiny.
const maxBodySize = 1 << 20

// writeJSON encodes a response with the given status. encode fills the
// jx encoder with the full payload.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// decodeBody reads the request body and decodes it with fn.
func decodeBody(r *http.Request, fn func(d *jx.Decoder) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	return fn(jx.DecodeBytes(data))
}

// writeError maps a domain error to an HTTP status and writes the standard
// error payload. Unexpected errors are logged and reported as 500 without
// leaking details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		msg = "internal error"
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}

// writeBadRequest reports a malformed request body or path parameter.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(http.StatusBadRequest)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, commodity.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, discount.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, discount.ErrAlreadyUsed),
		errors.Is(err, user.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, rating.ErrInvalidScore),
		errors.Is(err, commodity.ErrInvalidRange),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrInsufficientCredit):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func encodeUser(e *jx.Encoder, u *user.User) {
	e.ObjStart()
	e.FieldStart("username")
	e.Str(u.Username)
	e.FieldStart("credit")
	e.Int64(u.Credit)
	if u.CurrentDiscountCode != "" {
		e.FieldStart("currentDiscountCode")
		e.Str(u.CurrentDiscountCode)
	}
	e.FieldStart("usedDiscounts")
	e.ArrStart()
	for _, code := range u.UsedDiscounts {
		e.Str(code)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeCommodity(e *jx.Encoder, c *commodity.Commodity) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("providerId")
	e.Int32(c.ProviderID)
	e.FieldStart("price")
	e.Int64(c.Price)
	e.FieldStart("inStock")
	e.Int64(c.InStock)
	e.FieldStart("categories")
	e.ArrStart()
	for _, cat := range c.Categories {
		e.Str(cat)
	}
	e.ArrEnd()
	e.FieldStart("rating")
	e.Float64(c.Rating)
	e.FieldStart("rateCount")
	e.Int(c.RateCount)
	e.ObjEnd()
}

func encodeCommodities(e *jx.Encoder, cs []commodity.Commodity) {
	e.ArrStart()
	for i := range cs {
		encodeCommodity(e, &cs[i])
	}
	e.ArrEnd()
}

func encodeCartItem(e *jx.Encoder, item *cart.Item) {
	e.ObjStart()
	e.FieldStart("username")
	e.Str(item.Username)
	e.FieldStart("commodityId")
	e.Int64(item.CommodityID)
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.FieldStart("unitPrice")
	e.Int64(item.UnitPrice)
	e.ObjEnd()
}

func encodeReceipt(e *jx.Encoder, rec *checkout.Receipt) {
	e.ObjStart()
	e.FieldStart("username")
	e.Str(rec.Username)
	e.FieldStart("subtotal")
	e.Int64(rec.Subtotal)
	if rec.DiscountCode != "" {
		e.FieldStart("discountCode")
		e.Str(rec.DiscountCode)
	}
	e.FieldStart("finalPrice")
	e.Int64(rec.FinalPrice)
	e.FieldStart("remainingCredit")
	e.Int64(rec.Remaining)
	e.FieldStart("items")
	e.ArrStart()
	for i := range rec.Items {
		encodeCartItem(e, &rec.Items[i])
	}
	e.ArrEnd()
	e.ObjEnd()
}
