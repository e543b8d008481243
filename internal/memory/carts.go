// Package memory holds map-backed stores used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
)

type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*carts.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*carts.Cart)}
}

func (s *CartStore) Get(_ context.Context, userID string) (*carts.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[userID]
	if !ok {
		return nil, apperr.NotFound("memory.CartStore.Get", "Cart not found for this user")
	}
	return c.Clone(), nil
}

func (s *CartStore) Insert(_ context.Context, c *carts.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.carts[c.UserID]; exists {
		return apperr.Conflict("memory.CartStore.Insert")
	}
	s.carts[c.UserID] = c.Clone()
	return nil
}

func (s *CartStore) Update(_ context.Context, c *carts.Cart, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.carts[c.UserID]
	if !ok {
		return apperr.NotFound("memory.CartStore.Update", "Cart not found for this user")
	}
	if cur.Version != expectedVersion {
		return apperr.Conflict("memory.CartStore.Update")
	}
	s.carts[c.UserID] = c.Clone()
	return nil
}
