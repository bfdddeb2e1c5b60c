package query

import (
	"context"
	"log"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
)

type Handler struct {
	carts    *cart.Service
	products product.Ledger
	orders   *order.Service
}

func NewHandler(carts *cart.Service, products product.Ledger, orders *order.Service) *Handler {
	return &Handler{carts: carts, products: products, orders: orders}
}

// Products
func (h *Handler) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return h.products.Get(ctx, id)
}

func (h *Handler) ListProducts(ctx context.Context) ([]*product.Product, error) {
	return h.products.List(ctx)
}

// Cart

// GetCart returns the cached cart priced at current ledger prices. A missing
// cart is returned as an empty view.
func (h *Handler) GetCart(ctx context.Context, userID string) (*CartView, error) {
	c, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.CartView(ctx, c)
}

// CartView prices c. Items whose product no longer exists are kept but
// marked unavailable and left out of the subtotal.
func (h *Handler) CartView(ctx context.Context, c *cart.Cart) (*CartView, error) {
	view := &CartView{
		OwnerID:   c.OwnerID,
		Items:     make([]CartItemView, 0, len(c.Items)),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
	}

	found, err := h.products.Find(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}

	for _, item := range c.Items {
		line := CartItemView{ProductID: item.ProductID, Quantity: item.Quantity}

		if p, ok := found[item.ProductID]; ok {
			line.Name = p.Name
			line.UnitPrice = p.Price
			line.Subtotal = p.Price * item.Quantity
			line.Available = true
			line.InStock = p.Stock >= item.Quantity
			view.Subtotal += line.Subtotal
		} else {
			log.Printf("[Query] Cart %s references missing product %s", c.OwnerID, item.ProductID)
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return h.orders.Get(ctx, id)
}

func (h *Handler) ListOrdersByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return h.orders.ListForOwner(ctx, userID)
}

func (h *Handler) ListAllOrders(ctx context.Context) ([]*order.Order, error) {
	return h.orders.ListAll(ctx)
}
