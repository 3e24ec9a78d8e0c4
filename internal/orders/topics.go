package orders

const (
	TopicOrderSubmitted = "order.submitted"
	TopicCartChanged    = "cart.changed"
)

// PartitionKey keeps every event of one order (or one cart session) in order.
func PartitionKey(id string) []byte { return []byte(id) }
