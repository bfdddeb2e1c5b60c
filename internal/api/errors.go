package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
)

// Machine readable error codes
const (
	CodeValidation         = "validation"
	CodeEmptyCart          = "empty_cart"
	CodeProductUnavailable = "product_unavailable"
	CodeInsufficientStock  = "insufficient_stock"
	CodeNotFound           = "not_found"
	CodeStorage            = "storage"
)

// errorResponse is the body of every failed request. Checkout failures also
// carry the stage, and once the order was persisted its id and status.
type errorResponse struct {
	Error       string             `json:"error"`
	Code        string             `json:"code"`
	Fields      []order.FieldError `json:"fields,omitempty"`
	Stage       string             `json:"stage,omitempty"`
	OrderID     string             `json:"orderId,omitempty"`
	OrderStatus string             `json:"orderStatus,omitempty"`
}

// classify maps domain errors to an HTTP status and code. Order matters:
// ErrProductUnavailable is checked before not-found and ErrEmptyCart before
// validation.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, command.ErrEmptyCart):
		return http.StatusBadRequest, CodeEmptyCart
	case errors.Is(err, command.ErrProductUnavailable):
		return http.StatusConflict, CodeProductUnavailable
	case errors.Is(err, command.ErrInsufficientStock):
		return http.StatusConflict, CodeInsufficientStock
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, CodeNotFound
	}
	return http.StatusInternalServerError, CodeStorage
}

// respondError writes err as {"error", "code"}. Storage failures are logged
// and reported without detail.
func respondError(w http.ResponseWriter, err error) {
	status, code := classify(err)

	resp := errorResponse{Error: err.Error(), Code: code}
	if status == http.StatusInternalServerError {
		log.Printf("[API] Internal error: %v", err)
		resp.Error = "internal storage failure"
	}

	var verr *order.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	var cerr *command.CheckoutError
	if errors.As(err, &cerr) {
		resp.Stage = string(cerr.Stage)
		if cerr.OrderPersisted() {
			resp.OrderID = cerr.Order.ID
			resp.OrderStatus = string(cerr.Order.Status)
		}
	}

	respondJSON(w, status, resp)
}
