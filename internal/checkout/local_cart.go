// Package checkout is the client-side cart and checkout flow. The local cart
// is authoritative for what the user sees; the server cart is a mirror kept
// eventually consistent with it.
package checkout

import (
	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
	"github.com/ariefcatur/go-khana-orders/internal/pricing"
)

// LocalCart works without a user identity. ServerVersion is the server cart
// version this state was last known to match.
type LocalCart struct {
	Items         []carts.Item
	ServerVersion int64
}

func (l *LocalCart) snapshot() []carts.Item {
	out := make([]carts.Item, len(l.Items))
	copy(out, l.Items)
	return out
}

func (l *LocalCart) Subtotal() int64 {
	return pricing.Subtotal(carts.Lines(l.Items))
}

func (l *LocalCart) indexOf(itemID string) int {
	for i, it := range l.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

func (l *LocalCart) add(item carts.Item) error {
	const op = "checkout.Add"
	switch {
	case item.ID == "" || item.Name == "":
		return apperr.Validation(op, "Valid item data is required: id and name")
	case item.Price < 0 || item.Quantity < 0:
		return apperr.Validation(op, "Valid item data is required: price and quantity must not be negative")
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if i := l.indexOf(item.ID); i >= 0 {
		l.Items[i].Quantity += item.Quantity
		return nil
	}
	l.Items = append(l.Items, item)
	return nil
}

func (l *LocalCart) setQuantity(itemID string, quantity int) error {
	const op = "checkout.UpdateQuantity"
	if itemID == "" || quantity < 1 {
		return apperr.Validation(op, "Item ID and valid quantity are required")
	}
	i := l.indexOf(itemID)
	if i < 0 {
		return apperr.NotFound(op, "Item not found in cart")
	}
	l.Items[i].Quantity = quantity
	return nil
}

func (l *LocalCart) remove(itemID string) bool {
	i := l.indexOf(itemID)
	if i < 0 {
		return false
	}
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	return true
}

// subtract takes ordered quantities out of the cart, dropping emptied lines.
func (l *LocalCart) subtract(ordered []carts.Item) {
	for _, o := range ordered {
		i := l.indexOf(o.ID)
		if i < 0 {
			continue
		}
		l.Items[i].Quantity -= o.Quantity
		if l.Items[i].Quantity <= 0 {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
		}
	}
}
