package command

import (
	"errors"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
)

var (
	ErrValidation         = order.ErrValidation
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = product.ErrInsufficientStock
	ErrStorage            = errors.New("storage failure")
)

// Stage names a step of the checkout workflow
type Stage string

const (
	StageStarted        Stage = "started"
	StageCartValidated  Stage = "cart_validated"
	StagePriceComputed  Stage = "price_computed"
	StageOrderPersisted Stage = "order_persisted"
	StageStockAdjusted  Stage = "stock_adjusted"
	StageCartCleared    Stage = "cart_cleared"
	StageNotifiedAdmins Stage = "notified_admins"
	StageComplete       Stage = "complete"
)

// CheckoutError reports the stage a checkout failed in. Order is set once
// the order was persisted, including when it was cancelled by compensation.
type CheckoutError struct {
	Stage Stage
	Order *order.Order
	Err   error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at %s: %v", e.Stage, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// OrderPersisted reports whether an order document exists for this attempt
func (e *CheckoutError) OrderPersisted() bool {
	return e.Order != nil
}

// storageErr marks err as an infrastructure failure unless it already is one
func storageErr(err error) error {
	if err == nil || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
