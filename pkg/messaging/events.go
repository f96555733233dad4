package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types, used as routing keys on the clinic exchange
const (
	EventPatientCreated     = "patient.created"
	EventPatientUpdated     = "patient.updated"
	EventPatientDeactivated = "patient.deactivated"

	EventAppointmentCreated       = "appointment.created"
	EventAppointmentUpdated       = "appointment.updated"
	EventAppointmentStatusChanged = "appointment.status.changed"
	EventAppointmentDeleted       = "appointment.deleted"

	EventInventoryTransactionRecorded = "inventory.transaction.recorded"
	EventInventoryLowStock            = "inventory.item.low_stock"

	EventProfileCreated       = "profile.created"
	EventProfileStatusChanged = "profile.status.changed"

	EventCalendarPermissionCreated = "calendar_permission.created"
	EventCalendarPermissionDeleted = "calendar_permission.deleted"
)

// Event is the envelope every message is published in
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// EntityEvent is the payload for create/update/delete notifications.
type EntityEvent struct {
	ID      string `json:"id"`
	ActorID string `json:"actor_id,omitempty"`
}

// AppointmentStatusChangedEvent is published when an appointment changes status
type AppointmentStatusChangedEvent struct {
	AppointmentID string `json:"appointment_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	ActorID       string `json:"actor_id"`
}

// StockTransactionEvent is published for every recorded stock transaction
type StockTransactionEvent struct {
	TransactionID   string `json:"transaction_id"`
	ItemID          string `json:"item_id"`
	TransactionType string `json:"transaction_type"`
	Quantity        int    `json:"quantity"`
	PreviousStock   int    `json:"previous_stock"`
	NewStock        int    `json:"new_stock"`
	PerformedBy     string `json:"performed_by"`
}

// LowStockEvent is published when a transaction leaves an item at or below its minimum
type LowStockEvent struct {
	ItemID        string `json:"item_id"`
	ItemName      string `json:"item_name"`
	CurrentStock  int    `json:"current_stock"`
	MinStockLevel int    `json:"min_stock_level"`
}

// ProfileStatusChangedEvent is published when an admin (de)activates a profile
type ProfileStatusChangedEvent struct {
	ProfileID string `json:"profile_id"`
	IsActive  bool   `json:"is_active"`
	ActorID   string `json:"actor_id"`
}
