package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*Order)}
}

func (r *MemoryRepository) Insert(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	r.orders[o.ID] = o.clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.clone(), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.list(func(*Order) bool { return true }), nil
}

func (r *MemoryRepository) list(keep func(*Order) bool) []*Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	before := o.clone()
	o.Status = status
	o.UpdatedAt = at
	return before, nil
}
