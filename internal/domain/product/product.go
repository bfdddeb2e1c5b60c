package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidProduct    = errors.New("invalid product")
)

// DefaultLowStockThreshold applies when a product is stored without one
const DefaultLowStockThreshold = 10

// Product is the ledger view of a catalog item: price and stock are the
// only fields the order workflow relies on.
type Product struct {
	ID                string    `json:"id" bson:"_id"`
	Name              string    `json:"name" bson:"name"`
	Description       string    `json:"description,omitempty" bson:"description,omitempty"`
	Price             int       `json:"price" bson:"price"`
	Stock             int       `json:"stock" bson:"stock"`
	LowStockThreshold int       `json:"lowStockThreshold" bson:"low_stock_threshold"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updated_at"`
}

// IsLowStock reports whether stock has reached the alert threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// Validate checks the fields an admin can set
func (p *Product) Validate() error {
	var problems []string
	if strings.TrimSpace(p.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if p.LowStockThreshold < 0 {
		problems = append(problems, "lowStockThreshold must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError lists what is wrong with a product
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid product: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidProduct }

// Ledger is the source of truth for product prices and stock levels
type Ledger interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	// GetMany returns products in the order of ids and fails with
	// ErrProductNotFound when any of them is unknown.
	GetMany(ctx context.Context, ids []string) ([]*Product, error)
	// Find returns the products among ids that exist, keyed by id.
	Find(ctx context.Context, ids []string) (map[string]*Product, error)
	// DecrementStock subtracts amount only if the result stays >= 0.
	DecrementStock(ctx context.Context, id string, amount int) (*Product, error)
	IncrementStock(ctx context.Context, id string, amount int) (*Product, error)
	// Put inserts or replaces a product and reports whether it was new.
	Put(ctx context.Context, p *Product) (created bool, err error)
	Delete(ctx context.Context, id string) error
}

// inOrder lines found up with ids, failing on the first missing id
func inOrder(ids []string, found map[string]*Product) ([]*Product, error) {
	out := make([]*Product, 0, len(ids))
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		out = append(out, p)
	}
	return out, nil
}
