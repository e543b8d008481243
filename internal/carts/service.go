package carts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
)

// Store persists carts. Get returns apperr.ErrNotFound for an unknown
// user. Insert and Update return apperr.ErrConflict when the row already
// exists or its version no longer equals expectedVersion.
type Store interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Insert(ctx context.Context, c *Cart) error
	Update(ctx context.Context, c *Cart, expectedVersion int64) error
}

const defaultMaxAttempts = 5

type Service struct {
	store       Store
	now         func() time.Time
	maxAttempts int
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, maxAttempts: defaultMaxAttempts}
}

func (s *Service) Fetch(ctx context.Context, userID string) (*Cart, error) {
	if userID == "" {
		return nil, apperr.Validation("carts.Fetch", "User ID is required")
	}
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("carts.Fetch", err)
	}
	return c, nil
}

// Replace overwrites the whole item collection, creating the cart if needed.
func (s *Service) Replace(ctx context.Context, userID string, items []Item) (*Cart, error) {
	const op = "carts.Replace"
	if userID == "" || items == nil {
		return nil, apperr.Validation(op, "User ID and items are required")
	}
	normalized, err := normalize(items)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, userID, true, func(c *Cart) (bool, error) {
		c.Items = normalized
		return true, nil
	})
}

// AddItem increments an existing line or appends a new one. Quantity
// defaults to 1.
func (s *Service) AddItem(ctx context.Context, userID string, item Item) (*Cart, error) {
	const op = "carts.AddItem"
	if userID == "" {
		return nil, apperr.Validation(op, "User ID is required")
	}
	if err := validateItem(op, item); err != nil {
		return nil, err
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return s.mutate(ctx, op, userID, true, func(c *Cart) (bool, error) {
		c.add(item)
		return true, nil
	})
}

// UpdateQuantity sets the quantity of an existing line exactly.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*Cart, error) {
	const op = "carts.UpdateQuantity"
	if userID == "" || itemID == "" || quantity < 1 {
		return nil, apperr.Validation(op, "Item ID and valid quantity are required")
	}
	return s.mutate(ctx, op, userID, false, func(c *Cart) (bool, error) {
		found, changed := c.setQuantity(itemID, quantity)
		if !found {
			return false, apperr.NotFound(op, "Item not found in cart")
		}
		return changed, nil
	})
}

// RemoveItem drops a line. Removing an absent item is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*Cart, error) {
	const op = "carts.RemoveItem"
	if userID == "" || itemID == "" {
		return nil, apperr.Validation(op, "Item ID is required")
	}
	return s.mutate(ctx, op, userID, false, func(c *Cart) (bool, error) {
		return c.remove(itemID), nil
	})
}

// Clear empties the cart but keeps the record.
func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	const op = "carts.Clear"
	if userID == "" {
		return nil, apperr.Validation(op, "User ID is required")
	}
	return s.mutate(ctx, op, userID, false, func(c *Cart) (bool, error) {
		c.Items = []Item{}
		return true, nil
	})
}

// mutate runs fn as a read-modify-write guarded by the cart version and
// retries when another writer got there first.
func (s *Service) mutate(ctx context.Context, op, userID string, create bool, fn func(*Cart) (bool, error)) (*Cart, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		c, err := s.store.Get(ctx, userID)
		isNew := false
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			if !create {
				return nil, apperr.NotFound(op, "Cart not found for this user")
			}
			c, isNew = newCart(userID, s.now()), true
		case err != nil:
			return nil, apperr.Persistence(op, err)
		}

		expected := c.Version
		changed, err := fn(c)
		if err != nil {
			return nil, err
		}
		if !changed && !isNew {
			return c, nil
		}
		c.touch(s.now())

		if isNew {
			err = s.store.Insert(ctx, c)
		} else {
			err = s.store.Update(ctx, c, expected)
		}
		if errors.Is(err, apperr.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, apperr.Persistence(op, err)
		}
		return c, nil
	}
	return nil, apperr.Persistence(op, fmt.Errorf("gave up after %d attempts: %w", s.maxAttempts, apperr.ErrConflict))
}

func validateItem(op string, it Item) error {
	switch {
	case it.ID == "":
		return apperr.Validation(op, "Valid item data is required: id is missing")
	case it.Name == "":
		return apperr.Validation(op, "Valid item data is required: name is missing")
	case it.Price < 0:
		return apperr.Validation(op, "Valid item data is required: price must not be negative")
	case it.Quantity < 0:
		return apperr.Validation(op, "Valid item data is required: quantity must not be negative")
	}
	return nil
}

// normalize drops zero-quantity lines and merges duplicate ids, keeping
// the first occurrence's position and details.
func normalize(items []Item) ([]Item, error) {
	out := make([]Item, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if err := validateItem("carts.Replace", it); err != nil {
			return nil, err
		}
		if it.Quantity == 0 {
			continue
		}
		if i, ok := pos[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, it)
	}
	return out, nil
}
