package command

import "github.com/example/ec-storefront/internal/domain/order"

// Cart Commands
type AddToCart struct {
	UserID    string `json:"-"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	UserID    string `json:"-"`
	ProductID string `json:"productId"`
}

type UpdateCartItem struct {
	UserID    string `json:"-"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ClearCart struct {
	UserID string `json:"-"`
}

// Order Commands
type PlaceOrder struct {
	UserID  string        `json:"-"`
	Address order.Address `json:"address"`
}

type UpdateOrderStatus struct {
	OrderID string `json:"-"`
	Status  string `json:"status"`
}

// Product Commands

// UpsertProduct creates or replaces a product. A nil LowStockThreshold
// uses the default.
type UpsertProduct struct {
	ProductID         string `json:"-"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Price             int    `json:"price"`
	Stock             int    `json:"stock"`
	LowStockThreshold *int   `json:"lowStockThreshold"`
}

type DeleteProduct struct {
	ProductID string `json:"-"`
}
