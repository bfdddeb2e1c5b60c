package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps carts in process memory
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*Cart)}
}

func (r *MemoryRepository) Get(ctx context.Context, ownerID string) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[ownerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c.clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[c.OwnerID]
	switch {
	case !ok && c.Version != 0:
		return ErrVersionConflict
	case ok && stored.Version != c.Version:
		return ErrVersionConflict
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	c.Version++
	r.carts[c.OwnerID] = c.clone()
	return nil
}
