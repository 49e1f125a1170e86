package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	LineID string `json:"line_id"`
	Qty    int    `json:"qty"`
}

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("cart.updated", "line-1", "cart_line", "minishop-cart", samplePayload{LineID: "line-1", Qty: 3})

	require.NoError(t, err)
	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, "cart.updated", evt.EventType)
	assert.Equal(t, "line-1", evt.AggregateID)
	assert.Equal(t, "cart_line", evt.AggregateType)
	assert.Equal(t, "minishop-cart", evt.Source)
	assert.Equal(t, 1, evt.Version)
	assert.WithinDuration(t, time.Now().UTC(), evt.Timestamp, 5*time.Second)
}

func TestEvent_RoundTrip(t *testing.T) {
	evt, err := NewEvent("checkout.completed", "rcpt-1", "receipt", "minishop-cart", samplePayload{LineID: "line-1", Qty: 3})
	require.NoError(t, err)
	evt.WithCorrelationID("corr-123")

	data, err := evt.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID, decoded.EventID)
	assert.Equal(t, "corr-123", decoded.CorrelationID)

	var payload samplePayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "line-1", payload.LineID)
	assert.Equal(t, 3, payload.Qty)
}
