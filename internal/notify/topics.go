package notify

const (
	TopicOrderConfirmed = "storefront.order.confirmed"
	TopicStatusChanged  = "storefront.order.status"
)

// Partition key = order id so every event for one order stays ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
