package orders

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	kafkax "github.com/ariefcatur/go-khana-orders/internal/kafka"
	"github.com/ariefcatur/go-khana-orders/internal/pricing"
)

// Store persists orders. Get, GetByExternalID and Update return
// apperr.ErrNotFound for unknown orders; Insert returns apperr.ErrConflict
// when the external id is already taken. ListByUser is newest first.
type Store interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByExternalID(ctx context.Context, externalID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}

// Cache is a best-effort read-through cache of whole orders.
type Cache interface {
	GetOrder(ctx context.Context, id string) (*Order, bool)
	PutOrder(ctx context.Context, o *Order)
}

// IdempotencyIndex maps a client idempotency key to the order it created.
type IdempotencyIndex interface {
	Lookup(ctx context.Context, key string) (orderID string, ok bool)
	Remember(ctx context.Context, key, orderID string)
}

// Publisher is fire-and-forget; kafka.Producer satisfies it.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	store    Store
	cache    Cache
	idem     IdempotencyIndex
	events   Publisher
	producer string
	now      func() time.Time
	newID    func() string
}

// NewService wires the order service. cache, idem and events may be nil.
func NewService(store Store, cache Cache, idem IdempotencyIndex, events Publisher, producer string) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		idem:     idem,
		events:   events,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

type traceKey struct{}

// WithTraceID attaches the request id copied into published events.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}

// Create validates the submission, recomputes its totals and stores a new
// pending order. When in.ExternalID was already used the earlier order is
// returned with existed=true.
func (s *Service) Create(ctx context.Context, in CreateInput) (o *Order, existed bool, err error) {
	const op = "orders.Create"
	if err := validateCreate(in); err != nil {
		return nil, false, err
	}

	if in.ExternalID != "" {
		if prev, err := s.findByExternalID(ctx, in.ExternalID); err == nil {
			return prev, true, nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, false, apperr.Persistence(op, err)
		}
	}

	items := make([]Item, len(in.Items))
	copy(items, in.Items)
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	totals := pricing.Totals(lines)
	submitted := pricing.Submitted{
		Subtotal:    in.Subtotal,
		TaxAmount:   in.TaxAmount,
		DeliveryFee: in.DeliveryFee,
		TotalAmount: in.TotalAmount,
	}
	if bad := totals.Mismatches(submitted, pricing.Tolerance); len(bad) > 0 {
		return nil, false, apperr.Validation(op, "Order totals do not match items: "+strings.Join(bad, ", "))
	}

	addr := *in.ShippingAddress
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	now := s.now()
	o = &Order{
		ID:              s.newID(),
		ExternalID:      in.ExternalID,
		User:            *in.User,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		DeliveryFee:     totals.DeliveryFee,
		TotalAmount:     totals.TotalAmount,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Insert(ctx, o); err != nil {
		if errors.Is(err, apperr.ErrConflict) && in.ExternalID != "" {
			// lost a race with a retry carrying the same key
			if prev, err := s.store.GetByExternalID(ctx, in.ExternalID); err == nil {
				return prev, true, nil
			}
		}
		return nil, false, apperr.Persistence(op, err)
	}

	if s.idem != nil && o.ExternalID != "" {
		s.idem.Remember(ctx, o.ExternalID, o.ID)
	}
	s.putCache(ctx, o)
	s.publish(ctx, EventOrderCreated, o, createdPayload(o))
	return o, false, nil
}

func (s *Service) findByExternalID(ctx context.Context, key string) (*Order, error) {
	if s.idem != nil {
		if id, ok := s.idem.Lookup(ctx, key); ok {
			if o, err := s.store.Get(ctx, id); err == nil {
				return o, nil
			}
		}
	}
	return s.store.GetByExternalID(ctx, key)
}

// FetchByUser returns the user's orders, newest first.
func (s *Service) FetchByUser(ctx context.Context, userID string) ([]*Order, error) {
	if userID == "" {
		return nil, apperr.Validation("orders.FetchByUser", "User ID is required")
	}
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("orders.FetchByUser", err)
	}
	if list == nil {
		list = []*Order{}
	}
	return list, nil
}

func (s *Service) FetchByID(ctx context.Context, id string) (*Order, error) {
	if s.cache != nil {
		if o, ok := s.cache.GetOrder(ctx, id); ok {
			return o, nil
		}
	}
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("orders.FetchByID", err)
	}
	s.putCache(ctx, o)
	return o, nil
}

// MarkPaid records the client-reported payment and moves the order to
// processing whatever its prior status was.
func (s *Service) MarkPaid(ctx context.Context, id string, details PaymentResult) (*Order, error) {
	return s.update(ctx, "orders.MarkPaid", id, EventOrderPaid, func(o *Order, now time.Time) {
		o.PaidAt = &now
		if details != (PaymentResult{}) {
			o.PaymentResult = &details
		}
		o.applyStatus(StatusProcessing, now)
	})
}

func (s *Service) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	return s.update(ctx, "orders.MarkDelivered", id, EventOrderDelivered, func(o *Order, now time.Time) {
		o.applyStatus(StatusDelivered, now)
	})
}

// SetStatus accepts any valid status. Transitions against the lifecycle
// are allowed but logged.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Order, error) {
	const op = "orders.SetStatus"
	if !status.Valid() {
		return nil, apperr.Validation(op, "Please provide a valid status")
	}
	return s.update(ctx, op, id, EventOrderStatusChanged, func(o *Order, now time.Time) {
		if !IsForward(o.Status, status) {
			log.Printf("orders: backward status transition %s -> %s for order %s", o.Status, status, o.ID)
		}
		o.applyStatus(status, now)
	})
}

func (s *Service) update(ctx context.Context, op, id, event string, fn func(*Order, time.Time)) (*Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	previous := o.Status
	fn(o, s.now())
	if err := s.store.Update(ctx, o); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.putCache(ctx, o)
	s.publish(ctx, event, o, statusPayload(o, previous))
	return o, nil
}

func (s *Service) putCache(ctx context.Context, o *Order) {
	if s.cache != nil {
		s.cache.PutOrder(ctx, o)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, o *Order, payload any) {
	if s.events == nil {
		return
	}
	ev := Envelope{
		EventID:       s.newID(),
		EventType:     eventType,
		EventVersion:  EventVersion,
		OccurredAt:    s.now(),
		Producer:      s.producer,
		TraceID:       traceID(ctx),
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.events.Publish(topicByEvent[eventType], PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
