package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderSubmitted = "OrderSubmitted"
	EventCartChanged    = "CartChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps an already-encoded payload in a v1 envelope.
func NewEnvelope(eventType, producer, traceID, correlationID string, payload json.RawMessage) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

type SubmittedItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	VariantID string `json:"variant_id,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Qty       int    `json:"qty"`
}

type OrderSubmittedPayload struct {
	OrderID     string          `json:"order_id"`
	ExternalID  string          `json:"external_id"`
	SessionID   string          `json:"session_id"`
	AuthorName  string          `json:"author_name"`
	Email       string          `json:"email"`
	Title       string          `json:"title"`
	PostalCode  string          `json:"postal_code"`
	Address     string          `json:"address"`
	PhoneNumber string          `json:"phone_number"`
	Notes       string          `json:"notes,omitempty"`
	Items       []SubmittedItem `json:"items"`
	TotalItems  int             `json:"total_items"`
	Delivered   bool            `json:"delivered"`
}

type CartNotice struct {
	Kind         string `json:"kind"`
	ProductLabel string `json:"product_label"`
	Quantity     int    `json:"quantity,omitempty"`
}

type CartChangedPayload struct {
	SessionID     string       `json:"session_id"`
	Total         int          `json:"total"`
	LineCount     int          `json:"line_count"`
	Notifications []CartNotice `json:"notifications"`
}
