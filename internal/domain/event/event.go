package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event emitted after a committed state change
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ProtocolID    int64                  `json:"protocol_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// New creates a new domain event with a generated ID and timestamp
func New(eventType Type, protocolID int64, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		ProtocolID:    protocolID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.New().String(),
	}
}

// NewCorrelated creates an event linked to an existing correlation chain
func NewCorrelated(eventType Type, protocolID int64, payload map[string]interface{}, correlationID string) *Event {
	evt := New(eventType, protocolID, payload)
	evt.CorrelationID = correlationID
	return evt
}

// PayloadString returns a string payload value, or "" when absent
func (e *Event) PayloadString(key string) string {
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}

// PayloadInt64 returns an int64 payload value, or 0 when absent
func (e *Event) PayloadInt64(key string) int64 {
	switch v := e.Payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
