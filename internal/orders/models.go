package orders

import (
	"encoding/json"
	"time"
)

type UserRef struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Item is a line copied from the cart when the order is placed.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image,omitempty"`
}

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

const DefaultCountry = "India"

// PaymentResult is stored as reported by the client; it is not verified.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

// Order is the immutable snapshot of a checkout. Status is the single
// source of truth for delivery; isPaid and isDelivered are projections.
type Order struct {
	ID              string          `json:"id"`
	ExternalID      string          `json:"externalId,omitempty"`
	User            UserRef         `json:"user"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	Subtotal        int64           `json:"subtotal"`
	TaxAmount       int64           `json:"taxAmount"`
	DeliveryFee     int64           `json:"deliveryFee"`
	TotalAmount     int64           `json:"totalAmount"`
	Status          Status          `json:"status"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) IsPaid() bool { return o.PaidAt != nil }

func (o *Order) IsDelivered() bool { return o.Status == StatusDelivered }

func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		IsPaid      bool `json:"isPaid"`
		IsDelivered bool `json:"isDelivered"`
	}{alias(o), o.IsPaid(), o.IsDelivered()})
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = make([]Item, len(o.Items))
	copy(cp.Items, o.Items)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		cp.PaymentResult = &pr
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		cp.PaidAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		cp.DeliveredAt = &t
	}
	return &cp
}

// applyStatus moves the order to status and keeps DeliveredAt in step.
func (o *Order) applyStatus(to Status, now time.Time) {
	switch {
	case to == StatusDelivered && o.DeliveredAt == nil:
		o.DeliveredAt = &now
	case to != StatusDelivered:
		o.DeliveredAt = nil
	}
	o.Status = to
	o.UpdatedAt = now
}

// CreateInput is the checkout submission. Pointer fields distinguish
// "absent" from zero.
type CreateInput struct {
	ExternalID      string           `json:"externalId,omitempty"`
	User            *UserRef         `json:"user,omitempty"`
	Items           []Item           `json:"items,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod,omitempty"`
	Subtotal        *int64           `json:"subtotal,omitempty"`
	TaxAmount       *int64           `json:"taxAmount,omitempty"`
	DeliveryFee     *int64           `json:"deliveryFee,omitempty"`
	TotalAmount     *int64           `json:"totalAmount,omitempty"`
}
