package orders_test

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/memory"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	m.Called(topic, key, value, headers)
}

func i64(v int64) *int64 { return &v }

func validInput() orders.CreateInput {
	return orders.CreateInput{
		User: &orders.UserRef{UserID: "u1", Name: "Asha", Email: "asha@example.com"},
		Items: []orders.Item{
			{ID: "r1", Name: "Dal", Price: 250, Quantity: 2},
		},
		ShippingAddress: &orders.ShippingAddress{Street: "1 MG Road", City: "Pune", State: "MH", PostalCode: "411001"},
		PaymentMethod:   orders.PaymentUPI,
		Subtotal:        i64(500),
		TaxAmount:       i64(25),
		DeliveryFee:     i64(50),
		TotalAmount:     i64(575),
	}
}

func newService(pub orders.Publisher) *orders.Service {
	return orders.NewService(memory.NewOrderStore(), nil, nil, pub, "test")
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	o, existed, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.False(t, o.IsPaid())
	assert.False(t, o.IsDelivered())
	assert.Equal(t, int64(500), o.Subtotal)
	assert.Equal(t, int64(25), o.TaxAmount)
	assert.Equal(t, int64(50), o.DeliveryFee)
	assert.Equal(t, int64(575), o.TotalAmount)
	assert.Equal(t, orders.DefaultCountry, o.ShippingAddress.Country)

	o, err = svc.MarkPaid(ctx, o.ID, orders.PaymentResult{ID: "pay_1", Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessing, o.Status)
	assert.True(t, o.IsPaid())
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, "pay_1", o.PaymentResult.ID)

	o, err = svc.MarkDelivered(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, o.Status)
	assert.True(t, o.IsDelivered())
	assert.NotNil(t, o.DeliveredAt)

	stored, err := svc.FetchByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Status, stored.Status)
}

func TestCreateRequiresFields(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		strip func(*orders.CreateInput)
	}{
		{"user", func(in *orders.CreateInput) { in.User = nil }},
		{"items", func(in *orders.CreateInput) { in.Items = nil }},
		{"shippingAddress", func(in *orders.CreateInput) { in.ShippingAddress = nil }},
		{"paymentMethod", func(in *orders.CreateInput) { in.PaymentMethod = "" }},
		{"totalAmount", func(in *orders.CreateInput) { in.TotalAmount = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(nil)
			in := validInput()
			tc.strip(&in)

			_, _, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Contains(t, apperr.Message(err), tc.name)

			list, err := svc.FetchByUser(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCreateRejectsInvalidData(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*orders.CreateInput)
	}{
		{"unknown payment method", func(in *orders.CreateInput) { in.PaymentMethod = "paypal" }},
		{"zero quantity", func(in *orders.CreateInput) { in.Items[0].Quantity = 0 }},
		{"negative price", func(in *orders.CreateInput) { in.Items[0].Price = -1 }},
		{"duplicate item", func(in *orders.CreateInput) { in.Items = append(in.Items, in.Items[0]) }},
		{"missing city", func(in *orders.CreateInput) { in.ShippingAddress.City = "" }},
		{"total mismatch", func(in *orders.CreateInput) { in.TotalAmount = i64(100) }},
		{"tax mismatch", func(in *orders.CreateInput) { in.TaxAmount = i64(40) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.modify(&in)
			_, _, err := newService(nil).Create(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCreateToleratesRoundingDrift(t *testing.T) {
	in := validInput()
	in.TotalAmount = i64(576)

	o, _, err := newService(nil).Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(575), o.TotalAmount)
	assert.Equal(t, o.Subtotal+o.TaxAmount+o.DeliveryFee, o.TotalAmount)
}

func TestCreateIsIdempotentByExternalID(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	in := validInput()
	in.ExternalID = "checkout-42"

	first, existed, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, existed)

	second, existed, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first.ID, second.ID)

	list, err := svc.FetchByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	o, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, o.ID, "teleported")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Please provide a valid status", apperr.Message(err))

	o, err = svc.SetStatus(ctx, o.ID, orders.StatusDelivered)
	require.NoError(t, err)
	assert.True(t, o.IsDelivered())
	assert.NotNil(t, o.DeliveredAt)

	// backward transitions are accepted and clear the delivery time
	o, err = svc.SetStatus(ctx, o.ID, orders.StatusShipped)
	require.NoError(t, err)
	assert.False(t, o.IsDelivered())
	assert.Nil(t, o.DeliveredAt)

	_, err = svc.SetStatus(ctx, "missing", orders.StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkPaidOverridesStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	o, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, o.ID, orders.StatusCancelled)
	require.NoError(t, err)

	o, err = svc.MarkPaid(ctx, o.ID, orders.PaymentResult{ID: "pay_2"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessing, o.Status)
	assert.True(t, o.IsPaid())

	_, err = svc.MarkPaid(ctx, "missing", orders.PaymentResult{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFetchByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	var ids []string
	for i := 0; i < 3; i++ {
		o, _, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	list, err := svc.FetchByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}

	list, err = svc.FetchByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestEventsArePublished(t *testing.T) {
	ctx := orders.WithTraceID(context.Background(), "req-1")
	pub := new(MockPublisher)
	svc := newService(pub)

	var created orders.Envelope
	pub.On("Publish", orders.TopicOrderCreated, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &created))
		}).Once()
	pub.On("Publish", orders.TopicOrderPaid, mock.Anything, mock.Anything, mock.Anything).Once()

	o, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, o.ID, orders.PaymentResult{ID: "pay_1"})
	require.NoError(t, err)

	pub.AssertExpectations(t)
	assert.Equal(t, orders.EventOrderCreated, created.EventType)
	assert.Equal(t, orders.EventVersion, created.EventVersion)
	assert.Equal(t, "req-1", created.TraceID)
	assert.Equal(t, o.ID, created.CorrelationID)

	var p orders.OrderCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &p))
	assert.Equal(t, int64(575), p.TotalAmount)
	assert.Equal(t, "u1", p.UserID)
}

func TestOrderJSONCarriesDerivedFlags(t *testing.T) {
	o, _, err := newService(nil).Create(context.Background(), validInput())
	require.NoError(t, err)

	b, err := json.Marshal(o)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, false, m["isPaid"])
	assert.Equal(t, false, m["isDelivered"])
	assert.Equal(t, o.ID, m["id"])
	assert.Equal(t, "pending", m["status"])
}
