// Package tracker consumes order lifecycle events and records a per-order
// timeline.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-khana-orders/internal/kafka"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

// Timeline is satisfied by redisx.Timeline.
type Timeline interface {
	MarkSeen(ctx context.Context, service, eventID string) (bool, error)
	Forget(ctx context.Context, service, eventID string) error
	Append(ctx context.Context, orderID string, entry any) error
}

type Entry struct {
	EventID    string        `json:"eventId"`
	EventType  string        `json:"eventType"`
	Status     orders.Status `json:"status"`
	OccurredAt time.Time     `json:"occurredAt"`
}

type Service struct {
	Timeline    Timeline
	ServiceName string
}

// HandleOrderEvent is installed as the consumer handler. A nil return means
// the offset may be committed.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message; skip it rather than block the partition
		log.Printf("tracker: undecodable message at %s/%d@%d: %v", m.Topic, m.Partition, m.Offset, err)
		return nil
	}

	entry, orderID, err := toEntry(env)
	if err != nil {
		log.Printf("tracker: event %s: %v", env.EventID, err)
		return nil
	}
	if entry == nil {
		return nil // not an order event
	}

	fresh, err := s.Timeline.MarkSeen(ctx, s.ServiceName, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !fresh {
		return nil
	}
	if err := s.Timeline.Append(ctx, orderID, entry); err != nil {
		_ = s.Timeline.Forget(ctx, s.ServiceName, env.EventID)
		return fmt.Errorf("append timeline %s: %w", orderID, err)
	}
	return nil
}

func toEntry(env orders.Envelope) (*Entry, string, error) {
	e := &Entry{EventID: env.EventID, EventType: env.EventType, OccurredAt: env.OccurredAt}
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return nil, "", err
		}
		e.Status = orders.StatusPending
		return e, p.OrderID, nil
	case orders.EventOrderPaid, orders.EventOrderDelivered, orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusPayload](env.Payload)
		if err != nil {
			return nil, "", err
		}
		e.Status = p.Status
		return e, p.OrderID, nil
	}
	return nil, "", nil
}
