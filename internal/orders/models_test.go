package orders

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionFromPayload(t *testing.T) {
	p := OrderSubmittedPayload{
		OrderID:    "o-1",
		ExternalID: "idem-1",
		SessionID:  "s-1",
		AuthorName: "Aki",
		Items: []SubmittedItem{
			{ProductID: "1", Name: "Character Tee", VariantID: "1-2", Color: "black", Size: "M", SKU: "TS-BL-M", Qty: 2},
		},
		TotalItems: 2,
		Delivered:  false,
	}

	s := SubmissionFromPayload(p)

	assert.Equal(t, "o-1", s.ID)
	assert.Equal(t, StatusCSVFallback, s.Status)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "o-1", s.Items[0].SubmissionID)
	assert.Equal(t, "TS-BL-M", s.Items[0].SKU)
}

func TestNewEnvelope(t *testing.T) {
	payload, err := json.Marshal(CartChangedPayload{SessionID: "s-1", Total: 1, LineCount: 1})
	require.NoError(t, err)

	env := NewEnvelope(EventCartChanged, "storefront-api", "req-1", "s-1", payload)

	assert.Len(t, env.EventID, 36)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "s-1", env.CorrelationID)
	assert.False(t, env.OccurredAt.IsZero())
	assert.JSONEq(t, string(payload), string(env.Payload))
}
