package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-khana-orders/internal/apiclient"
	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
	"github.com/ariefcatur/go-khana-orders/internal/pricing"
)

var (
	ErrIdentityRequired = errors.New("checkout: sign in to place an order")
	ErrEmptyCart        = errors.New("checkout: cart is empty")
	ErrClosed           = errors.New("checkout: flow is closed")
)

// Server is the remote cart and order API; apiclient.Client satisfies it.
type Server interface {
	FetchCart(ctx context.Context, userID string) (*carts.Cart, error)
	ReplaceCart(ctx context.Context, userID string, items []carts.Item) (*carts.Cart, error)
	AddItem(ctx context.Context, userID string, item carts.Item) (*carts.Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*carts.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*carts.Cart, error)
	ClearCart(ctx context.Context, userID string) (*carts.Cart, error)
	CreateOrder(ctx context.Context, in orders.CreateInput) (*orders.Order, error)
}

type mirrorOp struct {
	name string
	call func(ctx context.Context) (*carts.Cart, error)
}

// Flow owns one user's local cart. With an empty userID it behaves as a
// guest: mutations stay local and Checkout is refused.
type Flow struct {
	server Server
	userID string

	mu            sync.Mutex
	local         LocalCart
	remoteVersion int64
	mirrorFailed  bool
	closed        bool

	queue chan mirrorOp
	done  chan struct{}
}

const defaultQueue = 64

func NewFlow(server Server, userID string) *Flow {
	f := &Flow{
		server: server,
		userID: userID,
		queue:  make(chan mirrorOp, defaultQueue),
		done:   make(chan struct{}),
	}
	go f.mirror()
	return f
}

// mirror applies queued server calls one at a time, in order.
func (f *Flow) mirror() {
	defer close(f.done)
	for op := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), apiclient.Timeout)
		c, err := op.call(ctx)
		cancel()

		f.mu.Lock()
		if err != nil {
			log.Printf("checkout: mirror %s for %s failed: %v", op.name, f.userID, err)
			f.mirrorFailed = true
		} else {
			f.remoteVersion = c.Version
			if !f.mirrorFailed {
				f.local.ServerVersion = c.Version
			}
		}
		f.mu.Unlock()
	}
}

// enqueue must be called with f.mu held.
func (f *Flow) enqueue(name string, call func(ctx context.Context) (*carts.Cart, error)) {
	if f.userID == "" || f.closed {
		return
	}
	select {
	case f.queue <- mirrorOp{name: name, call: call}:
	default:
		log.Printf("checkout: mirror queue full, dropping %s for %s", name, f.userID)
		f.mirrorFailed = true
	}
}

// Close drains pending mirror calls and stops the worker.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		<-f.done
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()
	<-f.done
}

func (f *Flow) UserID() string { return f.userID }

// Items returns a copy of the local cart.
func (f *Flow) Items() []carts.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.local.snapshot()
}

func (f *Flow) Subtotal() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.local.Subtotal()
}

// Load reconciles on sign-in. An existing server cart wins; a missing one
// is seeded from the local items. On any other error the local cart is kept.
func (f *Flow) Load(ctx context.Context) error {
	if f.userID == "" {
		return nil
	}
	c, err := f.server.FetchCart(ctx, f.userID)
	switch {
	case err == nil:
		f.adopt(c)
		return nil
	case !errors.Is(err, apperr.ErrNotFound):
		return err
	}

	items := f.Items()
	if len(items) == 0 {
		return nil
	}
	c, err = f.server.ReplaceCart(ctx, f.userID, items)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.local.ServerVersion = c.Version
	f.remoteVersion = c.Version
	f.mirrorFailed = false
	f.mu.Unlock()
	return nil
}

func (f *Flow) adopt(c *carts.Cart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.local.Items = c.Clone().Items
	f.local.ServerVersion = c.Version
	f.remoteVersion = c.Version
	f.mirrorFailed = false
}

// Refresh records the current server version without touching local state.
func (f *Flow) Refresh(ctx context.Context) error {
	if f.userID == "" {
		return nil
	}
	c, err := f.server.FetchCart(ctx, f.userID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.remoteVersion = c.Version
	f.mu.Unlock()
	return nil
}

// Diverged reports whether the local cart may no longer match the server:
// a mirror call failed, or the server moved past the version the local
// cart last matched.
func (f *Flow) Diverged() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mirrorFailed || f.local.ServerVersion != f.remoteVersion
}

func (f *Flow) Add(item carts.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.local.add(item); err != nil {
		return err
	}
	f.enqueue("add", func(ctx context.Context) (*carts.Cart, error) {
		return f.server.AddItem(ctx, f.userID, item)
	})
	return nil
}

func (f *Flow) UpdateQuantity(itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.local.setQuantity(itemID, quantity); err != nil {
		return err
	}
	f.enqueue("update", func(ctx context.Context) (*carts.Cart, error) {
		return f.server.UpdateQuantity(ctx, f.userID, itemID, quantity)
	})
	return nil
}

// Remove is a no-op for an item that is not in the cart.
func (f *Flow) Remove(itemID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.local.remove(itemID) {
		return
	}
	f.enqueue("remove", func(ctx context.Context) (*carts.Cart, error) {
		return f.server.RemoveItem(ctx, f.userID, itemID)
	})
}

func (f *Flow) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearLocked()
}

func (f *Flow) clearLocked() {
	f.local.Items = nil
	f.enqueue("clear", func(ctx context.Context) (*carts.Cart, error) {
		return f.server.ClearCart(ctx, f.userID)
	})
}

// Details is what the checkout form collects besides the cart.
type Details struct {
	Name            string
	Email           string
	ShippingAddress orders.ShippingAddress
	PaymentMethod   orders.PaymentMethod
	ExternalID      string // generated when empty
}

// Checkout places an order for the local cart. On success the ordered
// quantities leave both carts; anything added while the order was in flight
// stays. On failure neither cart is touched.
func (f *Flow) Checkout(ctx context.Context, d Details) (*orders.Order, error) {
	if f.userID == "" {
		return nil, ErrIdentityRequired
	}
	f.mu.Lock()
	closed := f.closed
	items := f.local.snapshot()
	f.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]orders.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, orders.Item{ID: it.ID, Name: it.Name, Price: it.Price, Quantity: it.Quantity, Image: it.Image})
	}
	totals := pricing.Totals(carts.Lines(items))
	externalID := d.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	}
	addr := d.ShippingAddress
	in := orders.CreateInput{
		ExternalID:      externalID,
		User:            &orders.UserRef{UserID: f.userID, Name: d.Name, Email: d.Email},
		Items:           lines,
		ShippingAddress: &addr,
		PaymentMethod:   d.PaymentMethod,
		Subtotal:        &totals.Subtotal,
		TaxAmount:       &totals.TaxAmount,
		DeliveryFee:     &totals.DeliveryFee,
		TotalAmount:     &totals.TotalAmount,
	}

	ctx, cancel := context.WithTimeout(ctx, apiclient.Timeout)
	defer cancel()
	o, err := f.server.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.local.subtract(items)
	if f.closed {
		log.Printf("checkout: flow for %s closed during checkout, server cart not updated", f.userID)
		f.mirrorFailed = true
		return o, nil
	}
	if len(f.local.Items) == 0 {
		f.clearLocked()
		return o, nil
	}
	rest := f.local.snapshot()
	f.enqueue("replace", func(ctx context.Context) (*carts.Cart, error) {
		return f.server.ReplaceCart(ctx, f.userID, rest)
	})
	return o, nil
}
