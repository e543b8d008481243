package orders

const (
	TopicOrderCreated       = "order.created"
	TopicOrderPaid          = "order.paid"
	TopicOrderDelivered     = "order.delivered"
	TopicOrderStatusChanged = "order.status.changed"
)

// Topics are all order lifecycle topics, in publish order.
var Topics = []string{
	TopicOrderCreated,
	TopicOrderPaid,
	TopicOrderDelivered,
	TopicOrderStatusChanged,
}

// PartitionKey keeps every event of one order on one partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
