// Package handler exposes the shop's domain services over JSON HTTP.
package handler

import (
	"net/http"

	"github.com/xenking/bazaar-shop/internal/domain/cart"
	"github.com/xenking/bazaar-shop/internal/domain/checkout"
	"github.com/xenking/bazaar-shop/internal/domain/commodity"
	"github.com/xenking/bazaar-shop/internal/domain/rating"
	"github.com/xenking/bazaar-shop/internal/domain/user"
)

// Handler routes HTTP requests to the domain services. Serialization lives
// here; the services know nothing about the wire format.
type Handler struct {
	users       *user.Service
	commodities *commodity.Service
	carts       *cart.Service
	checkouts   *checkout.Service
	ratings     *rating.Service
}

// New constructs a Handler with the required domain services.
func New(
	users *user.Service,
	commodities *commodity.Service,
	carts *cart.Service,
	checkouts *checkout.Service,
	ratings *rating.Service,
) *Handler {
	return &Handler{
		users:       users,
		commodities: commodities,
		carts:       carts,
		checkouts:   checkouts,
		ratings:     ratings,
	}
}

// Register attaches all API routes to mux. admin wraps handlers that require
// an API key; pass NoAuth when running without one.
func (h *Handler) Register(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /users", h.registerUser)
	mux.HandleFunc("GET /users/{username}", h.getUser)

	mux.HandleFunc("POST /cart", h.addToCart)
	mux.HandleFunc("GET /cart/{username}", h.listCart)
	mux.HandleFunc("DELETE /cart/{username}/{commodityID}", h.removeFromCart)

	mux.HandleFunc("POST /discounts/select", h.selectDiscount)
	mux.HandleFunc("POST /checkout", h.payCheckout)

	mux.Handle("POST /commodities", admin(http.HandlerFunc(h.addCommodity)))
	mux.HandleFunc("GET /commodities", h.listCommodities)
	mux.HandleFunc("GET /commodities/{id}", h.getCommodity)
	mux.HandleFunc("POST /commodities/{id}/rate", h.rateCommodity)
	mux.HandleFunc("GET /commodities/{id}/suggested", h.suggestCommodities)
}
