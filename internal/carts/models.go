package carts

import (
	"time"

	"github.com/ariefcatur/go-khana-orders/internal/pricing"
)

// Item is one line of a cart. Price is copied when the item is added and
// never re-derived.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// Cart is the single active cart of a user. Subtotal, Version and
// LastUpdated are derived by the service on every mutation.
type Cart struct {
	UserID      string    `json:"userId"`
	Items       []Item    `json:"items"`
	Subtotal    int64     `json:"subtotal"`
	Version     int64     `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []Item{},
		CreatedAt: now,
	}
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]Item, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

func (c *Cart) indexOf(itemID string) int {
	for i, it := range c.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) add(item Item) {
	if i := c.indexOf(item.ID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) setQuantity(itemID string, quantity int) (found, changed bool) {
	i := c.indexOf(itemID)
	if i < 0 {
		return false, false
	}
	if c.Items[i].Quantity == quantity {
		return true, false
	}
	c.Items[i].Quantity = quantity
	return true, true
}

func (c *Cart) remove(itemID string) bool {
	i := c.indexOf(itemID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// touch recomputes the derived fields after a mutation.
func (c *Cart) touch(now time.Time) {
	c.Subtotal = pricing.Subtotal(Lines(c.Items))
	c.Version++
	c.LastUpdated = now
}

// Lines converts items for the pricing package.
func Lines(items []Item) []pricing.Line {
	out := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	return out
}
