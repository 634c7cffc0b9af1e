// Package handler exposes the storefront over JSON HTTP. Handlers stay
// thin: they parse, delegate to domain services, and translate domain
// errors into status codes.
package handler

import (
	"net/http"

	"github.com/xenking/akasa-feast/internal/auth"
	"github.com/xenking/akasa-feast/internal/domain/cart"
	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/domain/order"
	"github.com/xenking/akasa-feast/internal/domain/payment"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	auth     *auth.Authenticator
	catalog  catalog.Repository
	carts    cart.Repository
	orders   *order.Service
	payments *payment.Service
}

// New wires a Handler from its dependencies.
func New(
	a *auth.Authenticator,
	cat catalog.Repository,
	carts cart.Repository,
	orders *order.Service,
	payments *payment.Service,
) *Handler {
	return &Handler{
		auth:     a,
		catalog:  cat,
		carts:    carts,
		orders:   orders,
		payments: payments,
	}
}

// Routes builds the API mux. Routes under authed require a bearer token or
// the access_token cookie.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)

	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /api/items", h.listItems)
	mux.HandleFunc("GET /api/items/{id}", h.getItem)

	mux.Handle("GET /api/cart", h.authed(h.getCart))
	mux.Handle("POST /api/cart/items", h.authed(h.addCartItem))
	mux.Handle("PUT /api/cart/items/{id}", h.authed(h.updateCartItem))
	mux.Handle("DELETE /api/cart/items/{id}", h.authed(h.deleteCartItem))
	mux.Handle("DELETE /api/cart", h.authed(h.clearCart))

	mux.Handle("POST /api/orders/checkout", h.authed(h.checkout))
	mux.Handle("POST /api/orders/draft", h.authed(h.draft))
	mux.Handle("GET /api/orders", h.authed(h.listOrders))
	mux.Handle("GET /api/orders/{id}", h.authed(h.getOrder))
	mux.Handle("POST /api/orders/{id}/payment", h.authed(h.payOrder))

	return mux
}
