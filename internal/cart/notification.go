package cart

type Kind string

const (
	KindAdded   Kind = "added"
	KindUpdated Kind = "updated"
	KindLimited Kind = "limited"
	KindRemoved Kind = "removed"
)

// Notification is a user-facing event produced by a single mutation.
// Quantity is zero when it does not apply (limited, removed).
type Notification struct {
	Kind         Kind   `json:"kind"`
	ProductLabel string `json:"product_label"`
	Quantity     int    `json:"quantity,omitempty"`
}

// Result is what every mutation returns: the cart after the call and the
// notifications the call emitted, in order.
type Result struct {
	Lines         []Line         `json:"lines"`
	Notifications []Notification `json:"notifications"`
	Changed       bool           `json:"changed"`
}

// Event is delivered to subscribers after each mutation.
type Event struct {
	Lines         []Line
	Notifications []Notification
}
