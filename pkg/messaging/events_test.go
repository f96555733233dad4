package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
)

func TestNewEvent(t *testing.T) {
	payload := StockTransactionEvent{
		TransactionID:   "tx-1",
		ItemID:          "item-1",
		TransactionType: "out",
		Quantity:        3,
		PreviousStock:   10,
		NewStock:        7,
		PerformedBy:     "profile-1",
	}

	event, err := NewEvent(EventInventoryTransactionRecorded, "clinic-api", "corr-1", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventInventoryTransactionRecorded, event.Type)
	assert.Equal(t, "clinic-api", event.Source)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.False(t, event.Timestamp.IsZero())

	var decoded StockTransactionEvent
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent(EventPatientCreated, "clinic-api", "", make(chan int))
	assert.Error(t, err)
}

func TestCorrelationID(t *testing.T) {
	ctx := context.WithValue(context.Background(), httputil.RequestIDKey, "req-42")
	assert.Equal(t, "req-42", getCorrelationID(ctx))

	ctx = WithCorrelationID(ctx, "corr-7")
	assert.Equal(t, "corr-7", getCorrelationID(ctx))

	assert.Empty(t, getCorrelationID(context.Background()))
}
