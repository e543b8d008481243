package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

type OrderStore struct {
	mu         sync.RWMutex
	orders     map[string]*orders.Order
	byExternal map[string]string
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:     make(map[string]*orders.Order),
		byExternal: make(map[string]string),
	}
}

func (s *OrderStore) Insert(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return apperr.Conflict("memory.OrderStore.Insert")
	}
	if o.ExternalID != "" {
		if _, taken := s.byExternal[o.ExternalID]; taken {
			return apperr.Conflict("memory.OrderStore.Insert")
		}
		s.byExternal[o.ExternalID] = o.ID
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

func (s *OrderStore) Get(_ context.Context, id string) (*orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound("memory.OrderStore.Get", "Order not found")
	}
	return o.Clone(), nil
}

func (s *OrderStore) GetByExternalID(_ context.Context, externalID string) (*orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExternal[externalID]
	if !ok {
		return nil, apperr.NotFound("memory.OrderStore.GetByExternalID", "Order not found")
	}
	return s.orders[id].Clone(), nil
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]*orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*orders.Order, 0)
	for _, o := range s.orders {
		if o.User.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *OrderStore) Update(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return apperr.NotFound("memory.OrderStore.Update", "Order not found")
	}
	s.orders[o.ID] = o.Clone()
	return nil
}
