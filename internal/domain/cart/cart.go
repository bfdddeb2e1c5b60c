package cart

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("productId is required")
	ErrCartNotFound    = errors.New("cart not found")
	ErrVersionConflict = errors.New("cart was modified concurrently")
	ErrCacheMiss       = errors.New("cache miss")
)

type Item struct {
	ProductID string `json:"productId" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Cart is the mutable pre-purchase selection of one owner. Items keep
// insertion order and never share a ProductID.
type Cart struct {
	OwnerID   string    `json:"ownerId" bson:"owner_id"`
	Items     []Item    `json:"items" bson:"items"`
	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// New returns an unsaved empty cart for owner
func New(ownerID string) *Cart {
	return &Cart{OwnerID: ownerID, Items: []Item{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the sum of all quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// ProductIDs lists the products in cart order
func (c *Cart) ProductIDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) add(productID string, quantity int) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
}

func (c *Cart) remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// setQuantity replaces the quantity of productID; quantity <= 0 removes it
func (c *Cart) setQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return c.remove(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
		return true
	}
	if c.Items[i].Quantity == quantity {
		return false
	}
	c.Items[i].Quantity = quantity
	return true
}

func (c *Cart) clear() bool {
	if c.IsEmpty() {
		return false
	}
	c.Items = []Item{}
	return true
}

func (c *Cart) clone() *Cart {
	cp := *c
	cp.Items = make([]Item, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// Repository persists carts keyed by owner.
type Repository interface {
	// Get returns ErrCartNotFound when the owner has never mutated a cart.
	Get(ctx context.Context, ownerID string) (*Cart, error)
	// Save writes c only if the stored version still equals c.Version
	// (0 meaning "not stored yet") and increments c.Version on success.
	// A lost race returns ErrVersionConflict.
	Save(ctx context.Context, c *Cart) error
}

// Cache holds cart snapshots in front of the repository
type Cache interface {
	Get(ctx context.Context, ownerID string) (*Cart, error)
	// Set must not replace a cached snapshot whose version is equal or higher.
	Set(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, ownerID string) error
}

// NopCache always misses
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Cart, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, *Cart) error           { return nil }
func (NopCache) Delete(context.Context, string) error       { return nil }
