package product

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryLedger keeps products in a map guarded by one mutex, so every stock
// change is a single critical section.
type MemoryLedger struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewMemoryLedger(seed ...*Product) *MemoryLedger {
	l := &MemoryLedger{products: make(map[string]Product)}
	for _, p := range seed {
		l.products[p.ID] = *p
	}
	return l
}

func (l *MemoryLedger) Get(ctx context.Context, id string) (*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return &p, nil
}

func (l *MemoryLedger) List(ctx context.Context) ([]*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Product, 0, len(l.products))
	for _, p := range l.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (l *MemoryLedger) GetMany(ctx context.Context, ids []string) ([]*Product, error) {
	found, err := l.Find(ctx, ids)
	if err != nil {
		return nil, err
	}
	return inOrder(ids, found)
}

func (l *MemoryLedger) Find(ctx context.Context, ids []string) (map[string]*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]*Product, len(ids))
	for _, id := range ids {
		if p, ok := l.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (l *MemoryLedger) DecrementStock(ctx context.Context, id string, amount int) (*Product, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if p.Stock < amount {
		return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, id, p.Stock, amount)
	}
	p.Stock -= amount
	p.UpdatedAt = time.Now()
	l.products[id] = p
	return &p, nil
}

func (l *MemoryLedger) IncrementStock(ctx context.Context, id string, amount int) (*Product, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	p.Stock += amount
	p.UpdatedAt = time.Now()
	l.products[id] = p
	return &p, nil
}

func (l *MemoryLedger) Put(ctx context.Context, p *Product) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, exists := l.products[p.ID]
	p.UpdatedAt = time.Now()
	l.products[p.ID] = *p
	return !exists, nil
}

func (l *MemoryLedger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.products[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	delete(l.products, id)
	return nil
}
