package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a Pending order. totalPrice must equal the sum of the
// line items.
func (s *Service) Create(ctx context.Context, ownerID string, items []LineItem, totalPrice int, addr Address) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrValidation, item.ProductID)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: price for %s must not be negative", ErrValidation, item.ProductID)
		}
	}
	if sum := TotalOf(items); sum != totalPrice {
		return nil, fmt.Errorf("%w: total %d does not match line items %d", ErrValidation, totalPrice, sum)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	frozen := make([]LineItem, len(items))
	copy(frozen, items)

	o := &Order{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Items:           frozen,
		Status:          StatusPending,
		TotalPrice:      totalPrice,
		ShippingAddress: addr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		return nil, err
	}

	log.Printf("[Order] Created order %s for %s (%d items, total %d)", o.ID, ownerID, len(items), totalPrice)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]*Order, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

// SetStatus validates raw and applies it. It returns the updated order and
// the status it had before.
func (s *Service) SetStatus(ctx context.Context, id, raw string) (*Order, Status, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	before, err := s.repo.UpdateStatus(ctx, id, status, now)
	if err != nil {
		return nil, "", err
	}

	updated := before.clone()
	updated.Status = status
	updated.UpdatedAt = now

	log.Printf("[Order] Order %s status %s -> %s", id, before.Status, status)
	return updated, before.Status, nil
}
