package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"golang.org/x/sync/singleflight"
)

const maxMutationAttempts = 5

// ProductLookup is the part of the product ledger the cart needs
type ProductLookup interface {
	Get(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	repo     Repository
	cache    Cache
	products ProductLookup
	sfg      singleflight.Group
}

func NewService(repo Repository, cache Cache, products ProductLookup) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
	}
}

// AddItem merges quantity into the owner's cart. The product must exist,
// stock is only checked at checkout.
func (s *Service) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, ownerID, func(c *Cart) bool {
		c.add(productID, quantity)
		return true
	})
}

// RemoveItem drops productID from the cart; absent items are a no-op
func (s *Service) RemoveItem(ctx context.Context, ownerID, productID string) (*Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	return s.mutate(ctx, ownerID, func(c *Cart) bool {
		return c.remove(productID)
	})
}

// SetQuantity replaces the quantity of productID; quantity <= 0 removes it
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity > 0 {
		if _, err := s.products.Get(ctx, productID); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, ownerID, func(c *Cart) bool {
		return c.setQuantity(productID, quantity)
	})
}

// Clear empties the cart and keeps the document. Clearing an empty or
// missing cart is a no-op.
func (s *Service) Clear(ctx context.Context, ownerID string) (*Cart, error) {
	return s.mutate(ctx, ownerID, func(c *Cart) bool {
		return c.clear()
	})
}

// RemoveOrdered takes checked-out quantities out of the cart. Lines added or
// raised after the checkout read keep the difference.
func (s *Service) RemoveOrdered(ctx context.Context, ownerID string, ordered []Item) (*Cart, error) {
	return s.mutate(ctx, ownerID, func(c *Cart) bool {
		changed := false
		for _, o := range ordered {
			i := c.indexOf(o.ProductID)
			if i < 0 {
				continue
			}
			changed = true
			if c.Items[i].Quantity <= o.Quantity {
				c.remove(o.ProductID)
				continue
			}
			c.Items[i].Quantity -= o.Quantity
		}
		return changed
	})
}

// GetCart returns the owner's cart through the cache. A missing cart is
// returned as an empty one.
func (s *Service) GetCart(ctx context.Context, ownerID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(ownerID, func() (any, error) {
		c, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("[Cart] Cache get failed for %s: %v", ownerID, err)
		}

		c, err = s.Current(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if c.Version > 0 {
			if err := s.cache.Set(ctx, c); err != nil {
				log.Printf("[Cart] Cache set failed for %s: %v", ownerID, err)
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart).clone(), nil
}

// Current reads the cart from the repository, bypassing the cache
func (s *Service) Current(ctx context.Context, ownerID string) (*Cart, error) {
	c, err := s.repo.Get(ctx, ownerID)
	if errors.Is(err, ErrCartNotFound) {
		return New(ownerID), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// mutate runs a read-modify-write against the repository and retries when
// another request saved the same cart in between. fn reports whether it
// changed the cart; unchanged carts are not written.
func (s *Service) mutate(ctx context.Context, ownerID string, fn func(c *Cart) bool) (*Cart, error) {
	for attempt := 1; attempt <= maxMutationAttempts; attempt++ {
		c, err := s.Current(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if !fn(c) {
			return c, nil
		}

		c.UpdatedAt = time.Now()
		err = s.repo.Save(ctx, c)
		if errors.Is(err, ErrVersionConflict) {
			log.Printf("[Cart] Version conflict on cart %s (attempt %d)", ownerID, attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.refreshCache(ctx, c)
		return c, nil
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts", ErrVersionConflict, maxMutationAttempts)
}

// refreshCache writes the freshly saved cart through to the cache so that a
// slower reader still holding the previous version cannot overwrite it
func (s *Service) refreshCache(ctx context.Context, c *Cart) {
	err := s.cache.Set(ctx, c)
	if err == nil {
		return
	}
	log.Printf("[Cart] Cache refresh failed for %s: %v", c.OwnerID, err)
	if err := s.cache.Delete(ctx, c.OwnerID); err != nil {
		log.Printf("[Cart] Cache invalidation failed for %s: %v", c.OwnerID, err)
	}
}
