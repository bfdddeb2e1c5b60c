package query

import "time"

// CartItemView is a cart line priced at the current ledger price
type CartItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  int    `json:"subtotal"`
	// Available is false once the product has been removed from the catalog
	Available bool `json:"available"`
	InStock   bool `json:"inStock"`
}

type CartView struct {
	OwnerID   string         `json:"ownerId"`
	Items     []CartItemView `json:"items"`
	ItemCount int            `json:"itemCount"`
	Subtotal  int            `json:"subtotal"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
