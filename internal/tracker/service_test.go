package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/ariefcatur/go-khana-orders/internal/kafka"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

type fakeTimeline struct {
	seen      map[string]bool
	entries   map[string][]*Entry
	appendErr error
}

func newFakeTimeline() *fakeTimeline {
	return &fakeTimeline{seen: map[string]bool{}, entries: map[string][]*Entry{}}
}

func (f *fakeTimeline) MarkSeen(_ context.Context, service, eventID string) (bool, error) {
	k := fmt.Sprintf("%s:%s", service, eventID)
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

func (f *fakeTimeline) Forget(_ context.Context, service, eventID string) error {
	delete(f.seen, fmt.Sprintf("%s:%s", service, eventID))
	return nil
}

func (f *fakeTimeline) Append(_ context.Context, orderID string, entry any) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries[orderID] = append(f.entries[orderID], entry.(*Entry))
	return nil
}

func message(eventID, eventType string, payload any) kafkago.Message {
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: orders.EventVersion,
		OccurredAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Topic: "order.test", Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderEventBuildsTimeline(t *testing.T) {
	ctx := context.Background()
	tl := newFakeTimeline()
	svc := &Service{Timeline: tl, ServiceName: "tracker"}

	require.NoError(t, svc.HandleOrderEvent(ctx, message("e1", orders.EventOrderCreated,
		orders.OrderCreatedPayload{OrderID: "o1", UserID: "u1", TotalAmount: 575})))
	require.NoError(t, svc.HandleOrderEvent(ctx, message("e2", orders.EventOrderPaid,
		orders.OrderStatusPayload{OrderID: "o1", UserID: "u1", Status: orders.StatusProcessing, IsPaid: true})))
	require.NoError(t, svc.HandleOrderEvent(ctx, message("e3", orders.EventOrderDelivered,
		orders.OrderStatusPayload{OrderID: "o1", UserID: "u1", Status: orders.StatusDelivered, IsPaid: true})))

	got := tl.entries["o1"]
	require.Len(t, got, 3)
	assert.Equal(t, orders.StatusPending, got[0].Status)
	assert.Equal(t, orders.EventOrderPaid, got[1].EventType)
	assert.Equal(t, orders.StatusDelivered, got[2].Status)
}

func TestHandleOrderEventDeduplicates(t *testing.T) {
	ctx := context.Background()
	tl := newFakeTimeline()
	svc := &Service{Timeline: tl, ServiceName: "tracker"}
	m := message("e1", orders.EventOrderStatusChanged,
		orders.OrderStatusPayload{OrderID: "o1", Status: orders.StatusShipped})

	require.NoError(t, svc.HandleOrderEvent(ctx, m))
	require.NoError(t, svc.HandleOrderEvent(ctx, m))
	assert.Len(t, tl.entries["o1"], 1)
}

func TestHandleOrderEventSkipsForeignAndBrokenMessages(t *testing.T) {
	ctx := context.Background()
	tl := newFakeTimeline()
	svc := &Service{Timeline: tl, ServiceName: "tracker"}

	assert.NoError(t, svc.HandleOrderEvent(ctx, kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, svc.HandleOrderEvent(ctx, message("e9", "StockReserved", map[string]string{"order_id": "o1"})))
	assert.Empty(t, tl.entries)
	assert.Empty(t, tl.seen)
}

func TestHandleOrderEventRetriesAfterAppendFailure(t *testing.T) {
	ctx := context.Background()
	tl := newFakeTimeline()
	tl.appendErr = errors.New("redis down")
	svc := &Service{Timeline: tl, ServiceName: "tracker"}
	m := message("e1", orders.EventOrderCreated, orders.OrderCreatedPayload{OrderID: "o1"})

	assert.Error(t, svc.HandleOrderEvent(ctx, m))
	assert.Empty(t, tl.seen)

	tl.appendErr = nil
	require.NoError(t, svc.HandleOrderEvent(ctx, m))
	assert.Len(t, tl.entries["o1"], 1)
}
