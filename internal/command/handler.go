package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
)

type Handler struct {
	cartSvc  *cart.Service
	products product.Ledger
	orderSvc *order.Service
	journal  store.EventStoreInterface
	notifier notification.Emitter
}

func NewHandler(
	cartSvc *cart.Service,
	products product.Ledger,
	orderSvc *order.Service,
	journal store.EventStoreInterface,
	notifier notification.Emitter,
) *Handler {
	return &Handler{
		cartSvc:  cartSvc,
		products: products,
		orderSvc: orderSvc,
		journal:  journal,
		notifier: notifier,
	}
}

// =============================================================================
// Cart
// =============================================================================

// AddToCart adds an item to cart
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*cart.Cart, error) {
	c, err := h.cartSvc.AddItem(ctx, cmd.UserID, cmd.ProductID, cmd.Quantity)
	return c, cartErr(err)
}

// RemoveFromCart removes an item from cart
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (*cart.Cart, error) {
	c, err := h.cartSvc.RemoveItem(ctx, cmd.UserID, cmd.ProductID)
	return c, cartErr(err)
}

// UpdateCartItem sets the quantity of an item; zero removes it
func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) (*cart.Cart, error) {
	c, err := h.cartSvc.SetQuantity(ctx, cmd.UserID, cmd.ProductID, cmd.Quantity)
	return c, cartErr(err)
}

// ClearCart clears all items from cart
func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) (*cart.Cart, error) {
	c, err := h.cartSvc.Clear(ctx, cmd.UserID)
	return c, cartErr(err)
}

func cartErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, product.ErrProductNotFound):
		return err
	}
	return storageErr(err)
}

// =============================================================================
// Checkout
// =============================================================================

// PlaceOrder turns the customer's cart into an order.
//
// Failures before the order is persisted leave no trace. A stock decrement
// that loses a race is compensated: decremented lines are restored and the
// order is cancelled. The ordered lines are then removed from the cart; items
// added meanwhile stay. A failure there keeps the order, which is returned
// together with a cart_cleared CheckoutError.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	if err := cmd.Address.Validate(); err != nil {
		return nil, &CheckoutError{Stage: StageStarted, Err: err}
	}

	c, err := h.cartSvc.Current(ctx, cmd.UserID)
	if err != nil {
		return nil, &CheckoutError{Stage: StageCartValidated, Err: storageErr(err)}
	}
	if c.IsEmpty() {
		return nil, &CheckoutError{Stage: StageCartValidated, Err: ErrEmptyCart}
	}

	items, err := h.priceCart(ctx, c)
	if err != nil {
		return nil, &CheckoutError{Stage: StagePriceComputed, Err: err}
	}
	total := order.TotalOf(items)

	o, err := h.orderSvc.Create(ctx, cmd.UserID, items, total, cmd.Address)
	if err != nil {
		if !errors.Is(err, ErrValidation) {
			err = storageErr(err)
		}
		return nil, &CheckoutError{Stage: StageOrderPersisted, Err: err}
	}

	// The order exists from here on; the remaining steps run to completion
	// even if the request is cancelled.
	ctx = context.WithoutCancel(ctx)

	if cancelled, err := h.adjustStock(ctx, o); err != nil {
		return nil, &CheckoutError{Stage: StageStockAdjusted, Order: cancelled, Err: err}
	}

	var warning error
	if _, err := h.cartSvc.RemoveOrdered(ctx, cmd.UserID, c.Items); err != nil {
		log.Printf("[Checkout] Order %s placed but cart %s was not cleared: %v", o.ID, cmd.UserID, err)
		h.record(ctx, o.ID, order.EventCheckoutIncomplete, order.CheckoutIncomplete{
			OrderID:    o.ID,
			OwnerID:    o.OwnerID,
			Stage:      string(StageCartCleared),
			Error:      err.Error(),
			DetectedAt: time.Now(),
		})
		warning = &CheckoutError{Stage: StageCartCleared, Order: o, Err: storageErr(err)}
	}

	h.notifier.Emit(notification.AdminAudience, notification.KindNewOrder, NewOrderAlert{
		OrderID:      o.ID,
		CustomerName: o.ShippingAddress.FullName(),
		Total:        o.TotalPrice,
		ItemCount:    o.ItemCount(),
		CreatedAt:    o.CreatedAt,
	})
	h.record(ctx, o.ID, order.EventOrderPlaced, order.OrderPlaced{
		OrderID:       o.ID,
		OwnerID:       o.OwnerID,
		CustomerName:  o.ShippingAddress.FullName(),
		CustomerEmail: o.ShippingAddress.Email,
		Items:         o.Items,
		Total:         o.TotalPrice,
		PlacedAt:      o.CreatedAt,
	})

	log.Printf("[Checkout] Order %s placed by %s (total %d)", o.ID, o.OwnerID, o.TotalPrice)
	return o, warning
}

// priceCart freezes the cart into line items at current ledger prices
func (h *Handler) priceCart(ctx context.Context, c *cart.Cart) ([]order.LineItem, error) {
	products, err := h.products.GetMany(ctx, c.ProductIDs())
	if errors.Is(err, product.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}
	if err != nil {
		return nil, storageErr(err)
	}

	items := make([]order.LineItem, len(c.Items))
	for i, item := range c.Items {
		p := products[i]
		if p.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, p.ID, p.Stock, item.Quantity)
		}
		items[i] = order.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		}
	}
	return items, nil
}

// adjustStock decrements every line. On failure it compensates and returns
// the cancelled order.
func (h *Handler) adjustStock(ctx context.Context, o *order.Order) (*order.Order, error) {
	decremented := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		p, err := h.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return h.compensate(ctx, o, item.ProductID, decremented, err)
		}
		decremented[item.ProductID] += item.Quantity
		if p.IsLowStock() {
			h.emitLowStock(p)
		}
	}
	return nil, nil
}

func (h *Handler) compensate(ctx context.Context, o *order.Order, failed string, decremented map[string]int, cause error) (*order.Order, error) {
	log.Printf("[Checkout] Stock adjustment failed for order %s on %s: %v", o.ID, failed, cause)

	restored := make(map[string]int, len(decremented))
	for id, qty := range decremented {
		if _, err := h.products.IncrementStock(ctx, id, qty); err != nil {
			log.Printf("[Checkout] Failed to restore %d of %s for order %s: %v", qty, id, o.ID, err)
			continue
		}
		restored[id] = qty
	}

	cancelled := o
	if updated, _, err := h.orderSvc.SetStatus(ctx, o.ID, string(order.StatusCancelled)); err != nil {
		log.Printf("[Checkout] Failed to cancel order %s: %v", o.ID, err)
	} else {
		cancelled = updated
		h.notifier.Emit(notification.AdminAudience, notification.KindOrderUpdated, cancelled)
	}

	h.record(ctx, o.ID, order.EventCheckoutCompensated, order.CheckoutCompensated{
		OrderID:       o.ID,
		OwnerID:       o.OwnerID,
		FailedProduct: failed,
		Restored:      restored,
		Reason:        cause.Error(),
		CompensatedAt: time.Now(),
	})

	switch {
	case errors.Is(cause, product.ErrInsufficientStock):
		return cancelled, cause
	case errors.Is(cause, product.ErrProductNotFound):
		return cancelled, fmt.Errorf("%w: %v", ErrProductUnavailable, cause)
	}
	return cancelled, storageErr(cause)
}

// =============================================================================
// Order status
// =============================================================================

// UpdateOrderStatus sets an order's status. Any status may follow any other.
func (h *Handler) UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatus) (*order.Order, error) {
	updated, previous, err := h.orderSvc.SetStatus(ctx, cmd.OrderID, cmd.Status)
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, order.ErrOrderNotFound) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	h.notifier.Emit(notification.AdminAudience, notification.KindOrderUpdated, updated)
	h.notifier.Emit(notification.UserAudience(updated.OwnerID), notification.KindOrderStatusChanged, StatusChange{
		OrderID:        updated.ID,
		Status:         updated.Status,
		PreviousStatus: previous,
		UpdatedAt:      updated.UpdatedAt,
	})
	h.record(context.WithoutCancel(ctx), updated.ID, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID:       updated.ID,
		OwnerID:       updated.OwnerID,
		CustomerName:  updated.ShippingAddress.FullName(),
		CustomerEmail: updated.ShippingAddress.Email,
		From:          previous,
		To:            updated.Status,
		ChangedAt:     updated.UpdatedAt,
	})
	return updated, nil
}

// =============================================================================
// Products
// =============================================================================

// UpsertProduct creates or replaces a product and tells admins about it
func (h *Handler) UpsertProduct(ctx context.Context, cmd UpsertProduct) (*product.Product, error) {
	threshold := product.DefaultLowStockThreshold
	if cmd.LowStockThreshold != nil {
		threshold = *cmd.LowStockThreshold
	}

	p := &product.Product{
		ID:                strings.TrimSpace(cmd.ProductID),
		Name:              strings.TrimSpace(cmd.Name),
		Description:       cmd.Description,
		Price:             cmd.Price,
		Stock:             cmd.Stock,
		LowStockThreshold: threshold,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	created, err := h.products.Put(ctx, p)
	if err != nil {
		if errors.Is(err, product.ErrInvalidProduct) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	kind := notification.KindProductUpdated
	if created {
		kind = notification.KindProductCreated
	}
	h.notifier.Emit(notification.AdminAudience, kind, p)
	if p.IsLowStock() {
		h.emitLowStock(p)
	}

	log.Printf("[Product] %s product %s (price %d, stock %d)", kind, p.ID, p.Price, p.Stock)
	return p, nil
}

// DeleteProduct removes a product. Carts holding it fail checkout with
// product_unavailable.
func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) error {
	if err := h.products.Delete(ctx, cmd.ProductID); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return err
		}
		return storageErr(err)
	}

	h.notifier.Emit(notification.AdminAudience, notification.KindProductDeleted, ProductRemoved{ProductID: cmd.ProductID})
	log.Printf("[Product] Deleted product %s", cmd.ProductID)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) emitLowStock(p *product.Product) {
	h.notifier.Emit(notification.AdminAudience, notification.KindLowStockAlert, LowStockAlert{
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		Threshold: p.LowStockThreshold,
	})
}

// record appends to the journal; failures are logged and never surfaced
func (h *Handler) record(ctx context.Context, orderID, eventType string, data any) {
	if _, err := h.journal.Append(ctx, orderID, order.AggregateType, eventType, data); err != nil {
		log.Printf("[Checkout] Failed to journal %s for order %s: %v", eventType, orderID, err)
	}
}
