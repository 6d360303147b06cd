package market

const (
	TopicOrderCreated = "market.order.created"
	TopicOrderStatus  = "market.order.status"
)

// Partition key = order_id, so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
