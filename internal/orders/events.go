package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderPaid          = "OrderPaid"
	EventOrderDelivered     = "OrderDelivered"
	EventOrderStatusChanged = "OrderStatusChanged"

	EventVersion = 1
)

var topicByEvent = map[string]string{
	EventOrderCreated:       TopicOrderCreated,
	EventOrderPaid:          TopicOrderPaid,
	EventOrderDelivered:     TopicOrderDelivered,
	EventOrderStatusChanged: TopicOrderStatusChanged,
}

// Envelope wraps every event on the wire.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID     string    `json:"order_id"`
	ExternalID  string    `json:"external_id,omitempty"`
	UserID      string    `json:"user_id"`
	Items       []ItemQty `json:"items"`
	TotalAmount int64     `json:"total_amount"`
}

// OrderStatusPayload is shared by paid, delivered and status-changed events.
type OrderStatusPayload struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	Status   Status `json:"status"`
	Previous Status `json:"previous,omitempty"`
	IsPaid   bool   `json:"is_paid"`
}

func createdPayload(o *Order) OrderCreatedPayload {
	items := make([]ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemQty{ItemID: it.ID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderCreatedPayload{
		OrderID:     o.ID,
		ExternalID:  o.ExternalID,
		UserID:      o.User.UserID,
		Items:       items,
		TotalAmount: o.TotalAmount,
	}
}

func statusPayload(o *Order, previous Status) OrderStatusPayload {
	return OrderStatusPayload{
		OrderID:  o.ID,
		UserID:   o.User.UserID,
		Status:   o.Status,
		Previous: previous,
		IsPaid:   o.IsPaid(),
	}
}
