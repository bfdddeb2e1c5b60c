package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/query"
	"github.com/go-chi/chi/v5"
)

// CheckoutWarningHeader carries the follow-up failure of an order that was
// placed anyway
const CheckoutWarningHeader = "X-Checkout-Warning"

var errBadRequest = errors.New("malformed request body")

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	hub          *notification.Hub
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, hub *notification.Hub) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		hub:          hub,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.queryHandler.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpsertProduct
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}
	cmd.ProductID = chi.URLParam(r, "id")

	product, err := h.cmdHandler.UpsertProduct(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteProduct{ProductID: chi.URLParam(r, "id")}
	if err := h.cmdHandler.DeleteProduct(r.Context(), cmd); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// Cart Handlers

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddToCart
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}
	cmd.UserID = middleware.GetUserID(r.Context())

	c, err := h.cmdHandler.AddToCart(r.Context(), cmd)
	h.respondCart(w, r, c, err)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.RemoveFromCart
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}
	cmd.UserID = middleware.GetUserID(r.Context())

	c, err := h.cmdHandler.RemoveFromCart(r.Context(), cmd)
	h.respondCart(w, r, c, err)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateCartItem
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}
	cmd.UserID = middleware.GetUserID(r.Context())

	c, err := h.cmdHandler.UpdateCartItem(r.Context(), cmd)
	h.respondCart(w, r, c, err)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{UserID: middleware.GetUserID(r.Context())})
	h.respondCart(w, r, c, err)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.GetCart(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) respondCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, err error) {
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := h.queryHandler.CartView(r.Context(), c)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.PlaceOrder
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}
	cmd.UserID = middleware.GetUserID(r.Context())

	order, err := h.cmdHandler.PlaceOrder(r.Context(), cmd)
	if err != nil && order == nil {
		respondError(w, err)
		return
	}
	if err != nil {
		var cerr *command.CheckoutError
		stage := "unknown"
		if errors.As(err, &cerr) {
			stage = string(cerr.Stage)
		}
		w.Header().Set(CheckoutWarningHeader, fmt.Sprintf("%s failed; order %s was placed", stage, order.ID))
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListOrdersByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListAllOrders(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateOrderStatus
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}
	cmd.OrderID = chi.URLParam(r, "id")

	order, err := h.cmdHandler.UpdateOrderStatus(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ServeWS attaches an authenticated connection to the notification hub. The
// audiences are fixed from the token's roles at connect time.
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Code: "unauthorized"})
		return
	}
	h.hub.ServeWS(w, r, claims.UserID, notification.AudiencesFor(claims))
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON reads an optional JSON body into v
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}
